package ports

import (
	"context"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
)

// FareQuery is one search request against the flight-offers endpoint.
type FareQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	TravelClass   string
	CurrencyCode  string
	MaxResults    int
}

// TokenSource hands out a valid bearer token, refreshing the cached one
// before it expires. It is safe for concurrent use.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type OfferSource interface {
	SearchOffers(ctx context.Context, token string, query FareQuery) ([]models.Offer, error)
}

type ReportCache interface {
	GetReport(ctx context.Context, key string) (models.Report, error)
	SetReport(ctx context.Context, key string, report models.Report, ttl time.Duration) error
}

// SummarySink forwards a reduced summary of a finished run. Failures are
// reported back to the caller, never fatal.
type SummarySink interface {
	Send(ctx context.Context, generatedAt time.Time, best *models.BestOffer) error
}
