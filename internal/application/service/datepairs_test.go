package service

import (
	"testing"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
)

func TestBuildDatePairs_FullGrid(t *testing.T) {
	pairs, err := BuildDatePairs("2026-07-23", "2026-08-11", 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 9 {
		t.Fatalf("expected 9 pairs, got %d", len(pairs))
	}

	baseCount := 0
	for _, p := range pairs {
		if p.Delta.Dep < -1 || p.Delta.Dep > 1 || p.Delta.Ret < -1 || p.Delta.Ret > 1 {
			t.Fatalf("delta out of window: %+v", p.Delta)
		}
		if p.Delta == (models.DateDelta{}) {
			baseCount++
			if p.DepartureDate != "2026-07-23" || p.ReturnDate != "2026-08-11" {
				t.Fatalf("zero-offset pair does not match base dates: %+v", p)
			}
		}
	}
	if baseCount != 1 {
		t.Fatalf("expected exactly one zero-offset pair, got %d", baseCount)
	}
}

func TestBuildDatePairs_MonthBoundary(t *testing.T) {
	pairs, err := BuildDatePairs("2026-08-01", "2026-09-01", 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range pairs {
		if p.Delta.Dep == -1 && p.DepartureDate != "2026-07-31" {
			t.Fatalf("expected July 31 for dep offset -1, got %s", p.DepartureDate)
		}
		if p.Delta.Ret == -1 && p.ReturnDate != "2026-08-31" {
			t.Fatalf("expected August 31 for ret offset -1, got %s", p.ReturnDate)
		}
	}
}

func TestBuildDatePairs_DropsInvertedPairs(t *testing.T) {
	pairs, err := BuildDatePairs("2026-07-23", "2026-07-24", 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range pairs {
		if p.ReturnDate <= p.DepartureDate {
			t.Fatalf("inverted pair survived: %+v", p)
		}
	}
	// (+1,-1) and the two same-day combinations are gone
	if len(pairs) != 6 {
		t.Fatalf("expected 6 pairs after dropping inverted ones, got %d", len(pairs))
	}
}

func TestBuildDatePairs_AllowInverted(t *testing.T) {
	pairs, err := BuildDatePairs("2026-07-23", "2026-07-24", 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 9 {
		t.Fatalf("expected the full grid, got %d", len(pairs))
	}
}

func TestBuildDatePairs_RejectsMalformedDates(t *testing.T) {
	if _, err := BuildDatePairs("23-07-2026", "2026-08-11", 1, false); err == nil {
		t.Fatal("expected an error for malformed departure date")
	}
	if _, err := BuildDatePairs("2026-07-23", "someday", 1, false); err == nil {
		t.Fatal("expected an error for malformed return date")
	}
}
