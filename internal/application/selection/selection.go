package selection

import (
	"math"
	"strconv"
	"strings"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
)

// Rules are the constraints one offer must satisfy to qualify.
type Rules struct {
	MaxStops   int
	MaxMinutes int
	// DurationBoundStrict switches the per-direction duration bound from
	// "<= MaxMinutes" to "< MaxMinutes".
	DurationBoundStrict bool
	Cabin               string
	// TrustUpstreamCabin skips the client-side cabin check and relies on
	// the travelClass query parameter alone.
	TrustUpstreamCabin bool
}

// IsValid reports whether an offer is a qualifying round trip: exactly two
// itineraries, each within the stop and duration bounds, and (unless
// trusted upstream) every priced segment in the configured cabin.
func (r Rules) IsValid(offer models.Offer) bool {
	if len(offer.Itineraries) != 2 {
		return false
	}

	for _, it := range offer.Itineraries {
		if it.Stops() > r.MaxStops {
			return false
		}

		minutes, ok := models.ParseDurationMinutes(it.Duration)
		if !ok || minutes <= 0 {
			return false
		}
		if r.DurationBoundStrict {
			if minutes >= r.MaxMinutes {
				return false
			}
		} else if minutes > r.MaxMinutes {
			return false
		}

		if !r.TrustUpstreamCabin {
			for _, seg := range it.Segments {
				if !strings.EqualFold(seg.Cabin, r.Cabin) {
					return false
				}
			}
		}
	}

	return true
}

// PickCheapest returns the cheapest valid offer and its parsed amount.
// Ties keep the first-seen offer. Offers with a malformed or non-finite
// price are skipped, not fatal. Returns false when nothing qualifies.
func PickCheapest(offers []models.Offer, rules Rules) (models.Offer, float64, bool) {
	var (
		best      models.Offer
		bestPrice float64
		found     bool
	)

	for _, offer := range offers {
		if !rules.IsValid(offer) {
			continue
		}
		amount, ok := Amount(offer.Price)
		if !ok {
			continue
		}
		if !found || amount < bestPrice {
			best = offer
			bestPrice = amount
			found = true
		}
	}

	return best, bestPrice, found
}

// Amount parses an offer's numeric price, preferring the grand total over
// the plain total when both are present.
func Amount(p models.Price) (float64, bool) {
	raw := strings.TrimSpace(p.GrandTotal)
	if raw == "" {
		raw = strings.TrimSpace(p.Total)
	}
	if raw == "" {
		return 0, false
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}
