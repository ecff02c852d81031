package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Period is a calendar aggregation granularity.
type Period int

// Calendar granularities. Quarters start in January, April, July and October.
const (
	Monthly Period = iota
	Quarterly
	Yearly
)

// Periods lists every granularity in display order.
var Periods = []Period{Monthly, Quarterly, Yearly}

func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// ParsePeriod accepts the period name or its short form.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "month", "m":
		return Monthly, nil
	case "quarterly", "quarter", "q":
		return Quarterly, nil
	case "yearly", "year", "annual", "y":
		return Yearly, nil
	default:
		return 0, fmt.Errorf("invalid period: %q", s)
	}
}

// Label identifies the period containing t: "2006-01", "2006-Q1" or "2006".
func (p Period) Label(t time.Time) string {
	switch p {
	case Monthly:
		return t.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter(t))
	default:
		return t.Format("2006")
	}
}

// Start returns the first calendar day of the period containing t.
func (p Period) Start(t time.Time) time.Time {
	y := t.Year()
	switch p {
	case Monthly:
		return time.Date(y, t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		return time.Date(y, time.Month((quarter(t)-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

// End returns the last calendar day of the period containing t.
func (p Period) End(t time.Time) time.Time {
	start := p.Start(t)
	switch p {
	case Monthly:
		return start.AddDate(0, 1, -1)
	case Quarterly:
		return start.AddDate(0, 3, -1)
	default:
		return start.AddDate(1, 0, -1)
	}
}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
