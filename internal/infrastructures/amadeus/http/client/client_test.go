package amadeus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	derr "github.com/Alexico1969/bkk-tracker/internal/domain/errors"
	"github.com/Alexico1969/bkk-tracker/internal/domain/ports"
)

const offersBody = `{
	"data": [
		{
			"id": "1",
			"itineraries": [
				{"duration": "PT13H45M", "segments": [{"id": "s1", "carrierCode": "TG", "number": "921",
					"departure": {"iataCode": "AMS", "at": "2026-07-23T12:30:00"},
					"arrival": {"iataCode": "BKK", "at": "2026-07-24T06:15:00"}}]},
				{"duration": "PT12H30M", "segments": [{"id": "s2", "carrierCode": "TG", "number": "920",
					"departure": {"iataCode": "BKK", "at": "2026-08-11T00:55:00"},
					"arrival": {"iataCode": "AMS", "at": "2026-08-11T07:25:00"}}]}
			],
			"price": {"currency": "EUR", "total": "2430.20", "grandTotal": "2430.20"},
			"travelerPricings": [{"travelerId": "1", "fareDetailsBySegment": [
				{"segmentId": "s1", "cabin": "BUSINESS"},
				{"segmentId": "s2", "cabin": "BUSINESS"}
			]}]
		}
	]
}`

func testQuery() ports.FareQuery {
	return ports.FareQuery{
		Origin:        "AMS",
		Destination:   "BKK",
		DepartureDate: "2026-07-23",
		ReturnDate:    "2026-08-11",
		Adults:        1,
		TravelClass:   "BUSINESS",
		CurrencyCode:  "EUR",
		MaxResults:    20,
	}
}

func TestSearchOffers_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		q := r.URL.Query()
		if q.Get("originLocationCode") != "AMS" || q.Get("destinationLocationCode") != "BKK" {
			t.Errorf("unexpected route params: %v", q)
		}
		if q.Get("departureDate") != "2026-07-23" || q.Get("returnDate") != "2026-08-11" {
			t.Errorf("unexpected date params: %v", q)
		}
		if q.Get("travelClass") != "BUSINESS" || q.Get("currencyCode") != "EUR" {
			t.Errorf("unexpected class/currency params: %v", q)
		}
		if q.Get("adults") != "1" || q.Get("max") != "20" {
			t.Errorf("unexpected count params: %v", q)
		}
		_, _ = w.Write([]byte(offersBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 0, 0, 100, 10)
	offers, err := c.SearchOffers(context.Background(), "tok", testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}
	if offers[0].Price.GrandTotal != "2430.20" {
		t.Fatalf("unexpected price: %+v", offers[0].Price)
	}
	if offers[0].Itineraries[0].Segments[0].Cabin != "BUSINESS" {
		t.Fatalf("cabin not resolved: %+v", offers[0].Itineraries[0].Segments[0])
	}
}

func TestSearchOffers_RetriesOn429(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"errors":[{"status":429}]}`))
			return
		}
		_, _ = w.Write([]byte(offersBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 3, 10*time.Millisecond, 100, 10)
	offers, err := c.SearchOffers(context.Background(), "tok", testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer after retries, got %d", len(offers))
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestSearchOffers_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 2, 5*time.Millisecond, 100, 10)
	_, err := c.SearchOffers(context.Background(), "tok", testQuery())

	var upstream *derr.UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected a 429 upstream error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected initial call plus 2 retries, got %d", got)
	}
}

func TestSearchOffers_NonSuccessCarriesBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"Invalid date"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 3, 0, 100, 10)
	_, err := c.SearchOffers(context.Background(), "tok", testQuery())

	var upstream *derr.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected an upstream error, got %v", err)
	}
	if upstream.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", upstream.StatusCode)
	}
	if upstream.Body != `{"errors":[{"detail":"Invalid date"}]}` {
		t.Fatalf("error body not verbatim: %q", upstream.Body)
	}
}

func TestSearchOffers_TimeoutIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(offersBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, 0, 0, 100, 10)
	_, err := c.SearchOffers(context.Background(), "tok", testQuery())
	if !errors.Is(err, derr.ErrSearchTimeout) {
		t.Fatalf("expected a timeout error, got %v", err)
	}
}

func TestSearchOffers_MalformedJSONIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 0, 0, 100, 10)
	_, err := c.SearchOffers(context.Background(), "tok", testQuery())
	if err == nil {
		t.Fatal("expected a decode error")
	}
	var upstream *derr.UpstreamError
	if errors.As(err, &upstream) {
		t.Fatalf("decode failure should not look like an upstream status error: %v", err)
	}
}
