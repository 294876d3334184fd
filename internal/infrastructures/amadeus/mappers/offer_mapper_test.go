package mappers

import (
	"testing"

	"github.com/Alexico1969/bkk-tracker/internal/infrastructures/amadeus/dto"
)

func TestMapOffers(t *testing.T) {
	raw := []dto.FlightOffer{
		{
			ID: "7",
			Itineraries: []dto.Itinerary{
				{
					Duration: "PT13H45M",
					Segments: []dto.Segment{
						{
							ID:          "s1",
							CarrierCode: "TG",
							Number:      "921",
							Departure:   dto.FlightEndpoint{IataCode: "AMS", At: "2026-07-23T12:30:00"},
							Arrival:     dto.FlightEndpoint{IataCode: "BKK", At: "2026-07-24T06:15:00"},
						},
					},
				},
				{
					Duration: "PT15H5M",
					Segments: []dto.Segment{
						{ID: "s2", CarrierCode: "TG", Number: "920"},
						{ID: "s3", CarrierCode: "TG", Number: "930"},
					},
				},
			},
			Price: dto.Price{Currency: "EUR", Total: "2400.00", GrandTotal: "2430.20"},
			TravelerPricings: []dto.TravelerPricing{
				{
					TravelerID: "1",
					FareDetailsBySegment: []dto.FareDetail{
						{SegmentID: "s1", Cabin: "BUSINESS"},
						{SegmentID: "s2", Cabin: "BUSINESS"},
						{SegmentID: "s3", Cabin: "ECONOMY"},
					},
				},
			},
		},
	}

	offers := MapOffers(raw)
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	offer := offers[0]
	if offer.ID != "7" || offer.Price.GrandTotal != "2430.20" || offer.Price.Currency != "EUR" {
		t.Fatalf("unexpected offer head: %+v", offer)
	}
	if len(offer.Itineraries) != 2 {
		t.Fatalf("expected 2 itineraries, got %d", len(offer.Itineraries))
	}

	out := offer.Itineraries[0]
	if out.Duration != "PT13H45M" || out.Stops() != 0 {
		t.Fatalf("unexpected outbound itinerary: %+v", out)
	}
	if out.Segments[0].DepartureIATA != "AMS" || out.Segments[0].ArrivalIATA != "BKK" {
		t.Fatalf("endpoints not mapped: %+v", out.Segments[0])
	}
	if out.Segments[0].Cabin != "BUSINESS" {
		t.Fatalf("cabin not resolved for s1: %+v", out.Segments[0])
	}

	in := offer.Itineraries[1]
	if in.Stops() != 1 {
		t.Fatalf("unexpected inbound stops: %d", in.Stops())
	}
	if in.Segments[1].Cabin != "ECONOMY" {
		t.Fatalf("mixed cabins should map per segment: %+v", in.Segments)
	}
}

func TestMapOffers_NoTravelerPricings(t *testing.T) {
	raw := []dto.FlightOffer{
		{
			ID: "1",
			Itineraries: []dto.Itinerary{
				{Duration: "PT10H", Segments: []dto.Segment{{ID: "s1"}}},
				{Duration: "PT10H", Segments: []dto.Segment{{ID: "s2"}}},
			},
		},
	}

	offers := MapOffers(raw)
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}
	if offers[0].Itineraries[0].Segments[0].Cabin != "" {
		t.Fatalf("cabin should stay empty without fare details: %+v", offers[0].Itineraries[0].Segments[0])
	}
}

func TestMapOffers_Empty(t *testing.T) {
	if got := MapOffers(nil); len(got) != 0 {
		t.Fatalf("expected no offers, got %d", len(got))
	}
}
