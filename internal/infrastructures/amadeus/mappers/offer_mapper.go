package mappers

import (
	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/dto"
)

// MapOffers converts raw flight-offer payloads into domain offers. The
// per-segment cabin comes from the first traveler's fare details; the
// upstream prices every traveler in the same cabin per segment.
func MapOffers(data []dto.FlightOffer) []models.Offer {
	offers := make([]models.Offer, 0, len(data))
	for _, raw := range data {
		offers = append(offers, mapOffer(raw))
	}
	return offers
}

func mapOffer(raw dto.FlightOffer) models.Offer {
	cabins := cabinsBySegment(raw.TravelerPricings)

	itineraries := make([]models.Itinerary, 0, len(raw.Itineraries))
	for _, it := range raw.Itineraries {
		segments := make([]models.Segment, 0, len(it.Segments))
		for _, seg := range it.Segments {
			segments = append(segments, models.Segment{
				CarrierCode:   seg.CarrierCode,
				Number:        seg.Number,
				DepartureIATA: seg.Departure.IataCode,
				DepartureAt:   seg.Departure.At,
				ArrivalIATA:   seg.Arrival.IataCode,
				ArrivalAt:     seg.Arrival.At,
				Cabin:         cabins[seg.ID],
			})
		}
		itineraries = append(itineraries, models.Itinerary{
			Duration: it.Duration,
			Segments: segments,
		})
	}

	return models.Offer{
		ID: raw.ID,
		Price: models.Price{
			Currency:   raw.Price.Currency,
			Total:      raw.Price.Total,
			GrandTotal: raw.Price.GrandTotal,
		},
		Itineraries: itineraries,
	}
}

func cabinsBySegment(pricings []dto.TravelerPricing) map[string]string {
	cabins := make(map[string]string)
	if len(pricings) == 0 {
		return cabins
	}
	for _, detail := range pricings[0].FareDetailsBySegment {
		cabins[detail.SegmentID] = detail.Cabin
	}
	return cabins
}
