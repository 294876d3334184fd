package models

import "time"

// DateDelta records how far a candidate pair was flexed from the base dates.
type DateDelta struct {
	Dep int `json:"dep"`
	Ret int `json:"ret"`
}

// DatePair is one candidate (departure, return) combination. Dates are
// calendar dates in YYYY-MM-DD form, built in UTC.
type DatePair struct {
	DepartureDate string    `json:"departureDate"`
	ReturnDate    string    `json:"returnDate"`
	Delta         DateDelta `json:"delta"`
}

type Segment struct {
	CarrierCode   string `json:"carrierCode"`
	Number        string `json:"number"`
	DepartureIATA string `json:"departureIata"`
	DepartureAt   string `json:"departureAt"`
	ArrivalIATA   string `json:"arrivalIata"`
	ArrivalAt     string `json:"arrivalAt"`
	Cabin         string `json:"cabin,omitempty"`
}

// Itinerary is one direction of a round trip.
type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Stops is the number of intermediate stops, segments minus one.
func (i Itinerary) Stops() int {
	return len(i.Segments) - 1
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// Offer is a priced round-trip combination as returned by the upstream
// search. Offers are read-only: they are filtered and compared, never
// mutated.
type Offer struct {
	ID          string      `json:"id"`
	Price       Price       `json:"price"`
	Itineraries []Itinerary `json:"itineraries"`
}

// SearchResult is the outcome for a single date pair: either an upstream
// failure (status + error body) or the offers found with the locally
// computed cheapest valid one. The full offer list stays in memory only.
type SearchResult struct {
	Pair        DatePair `json:"pair"`
	Status      int      `json:"status,omitempty"`
	Error       string   `json:"error,omitempty"`
	OffersTotal int      `json:"offersTotal"`
	Cheapest    *Offer   `json:"cheapest"`
	Offers      []Offer  `json:"-"`
}

// BestOffer is the cheapest valid offer across all pairs of one run,
// together with the pair it belongs to.
type BestOffer struct {
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Pair     DatePair `json:"pair"`
	Offer    Offer    `json:"offer"`
}

type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type Constraints struct {
	MaxStops             int     `json:"maxStops"`
	MaxHoursPerDirection float64 `json:"maxHoursPerDirection"`
	Adults               int     `json:"adults"`
	Currency             string  `json:"currency"`
	BaseDepartureDate    string  `json:"baseDepartureDate"`
	BaseReturnDate       string  `json:"baseReturnDate"`
	FlexDays             int     `json:"flexDays"`
	PairCount            int     `json:"pairCount"`
}

// WebhookResult records the best-effort summary forward. A failure here
// never changes the report status.
type WebhookResult struct {
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Report is the response contract of one invocation.
type Report struct {
	Status      string         `json:"status"`
	Route       Route          `json:"route"`
	Cabin       string         `json:"cabin"`
	Constraints Constraints    `json:"constraints"`
	BestOffer   *BestOffer     `json:"bestOffer"`
	Searches    []SearchResult `json:"searches"`
	Webhook     *WebhookResult `json:"webhook,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Error       string         `json:"error,omitempty"`
}
