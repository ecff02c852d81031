package model

import "time"

// RawBar is one trading day as reported by a data source.
type RawBar struct {
	Date        time.Time
	Close       float64
	Dividend    float64 // cash dividend with ex-date on this day, 0 if none
	SplitFactor float64 // new shares per old share effective this day, 1 if none
}

// NormalizedBar is a RawBar after sorting, deduplication, range filtering
// and split adjustment. AdjustedClose and Dividend are in post-split terms.
type NormalizedBar struct {
	Date          time.Time `json:"date"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Dividend      float64   `json:"dividend"`
	SplitFactor   float64   `json:"split_factor"`
}

// Day returns the calendar day of t at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
