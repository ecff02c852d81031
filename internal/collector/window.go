package collector

import (
	"fmt"
	"time"

	"github.com/alexmartinsgomes/equity-analysis/internal/calculator"
	"github.com/alexmartinsgomes/equity-analysis/internal/model"
)

// ResolveWindow parses optional YYYY-MM-DD bounds. A missing end defaults to
// today and a missing begin to lookbackDays before end. Windows ending in
// the future or with begin after end are rejected.
func ResolveWindow(beginStr, endStr string, lookbackDays int, now time.Time) (time.Time, time.Time, error) {
	today := model.Day(now)
	end := today
	if endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end date %q: %w", endStr, calculator.ErrInvalidRange)
		}
		end = t
	}
	begin := end.AddDate(0, 0, -lookbackDays)
	if beginStr != "" {
		t, err := time.Parse("2006-01-02", beginStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("begin date %q: %w", beginStr, calculator.ErrInvalidRange)
		}
		begin = t
	}

	if end.After(today) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is in the future: %w", end.Format("2006-01-02"), calculator.ErrInvalidRange)
	}
	if begin.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("begin %s after end %s: %w",
			begin.Format("2006-01-02"), end.Format("2006-01-02"), calculator.ErrInvalidRange)
	}
	return begin, end, nil
}
