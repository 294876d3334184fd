package service

import (
	"fmt"
	"time"

	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
)

const dateLayout = "2006-01-02"

// BuildDatePairs expands the base departure and return dates, each by
// +/- flexDays, into the full Cartesian grid of candidate pairs. Date
// arithmetic runs in UTC so a flexed date never drifts across a month
// boundary. Pairs whose return does not fall strictly after the departure
// are dropped unless allowInverted is set.
func BuildDatePairs(baseDeparture, baseReturn string, flexDays int, allowInverted bool) ([]models.DatePair, error) {
	dep, err := time.ParseInLocation(dateLayout, baseDeparture, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse base departure date: %w", err)
	}
	ret, err := time.ParseInLocation(dateLayout, baseReturn, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse base return date: %w", err)
	}
	if flexDays < 0 {
		flexDays = 0
	}

	side := 2*flexDays + 1
	pairs := make([]models.DatePair, 0, side*side)

	for dd := -flexDays; dd <= flexDays; dd++ {
		for rd := -flexDays; rd <= flexDays; rd++ {
			depDate := dep.AddDate(0, 0, dd)
			retDate := ret.AddDate(0, 0, rd)
			if !allowInverted && !retDate.After(depDate) {
				continue
			}
			pairs = append(pairs, models.DatePair{
				DepartureDate: depDate.Format(dateLayout),
				ReturnDate:    retDate.Format(dateLayout),
				Delta:         models.DateDelta{Dep: dd, Ret: rd},
			})
		}
	}

	return pairs, nil
}
