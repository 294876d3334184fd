package dto

type FlightOffersResponse struct {
	Data []FlightOffer `json:"data"`
}

type FlightOffer struct {
	ID               string            `json:"id"`
	Itineraries      []Itinerary       `json:"itineraries"`
	Price            Price             `json:"price"`
	TravelerPricings []TravelerPricing `json:"travelerPricings"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID          string         `json:"id"`
	Departure   FlightEndpoint `json:"departure"`
	Arrival     FlightEndpoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Duration    string         `json:"duration"`
}

type FlightEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	GrandTotal string `json:"grandTotal"`
}

type TravelerPricing struct {
	TravelerID           string       `json:"travelerId"`
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

type FareDetail struct {
	SegmentID string `json:"segmentId"`
	Cabin     string `json:"cabin"`
}
