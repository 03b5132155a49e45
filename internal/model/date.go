package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for attendance dates.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses a calendar date. Values carrying a time component
// (as some drivers return for DATE columns) are cut to their date part.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Truncate drops the time component of t, keeping its calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysSince returns the whole days elapsed between date and now, rounded down.
func DaysSince(date, now time.Time) int {
	y, m, d := now.Date()
	n := time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	return int(n.Sub(Truncate(date)) / day)
}

// Month identifies a calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start returns the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Label renders the month as "2006-January". Labels do not sort
// chronologically; order by Start instead.
func (m Month) Label() string {
	return m.Start().Format("2006-January")
}

func (m Month) String() string { return m.Label() }

// ParseMonth accepts either "2006-January" or "2006-01".
func ParseMonth(s string) (Month, error) {
	for _, layout := range []string{"2006-January", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("parse month %q: want YYYY-Month or YYYY-MM", s)
}

// MonthsBetween lists every month from the month of start through the
// month of end, inclusive. It returns nil when start is after end.
func MonthsBetween(start, end time.Time) []Month {
	first, last := MonthOf(start), MonthOf(end)
	if last.Before(first) {
		return nil
	}
	var months []Month
	for m := first; !last.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}
