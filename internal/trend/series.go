// Package trend computes month-bucketed attendance series without gaps.
//
// A series is built on a scaffold: every month of the horizon crossed with
// every category in scope. Observed counts are laid over the scaffold and
// missing cells are zero, so a month with no attendance still appears.
package trend

import (
	"time"

	"github.com/roach88/flock/internal/model"
)

// Event is one attendance occurrence in some category.
type Event struct {
	Date     time.Time
	Category string
}

// Horizon bounds a series. A zero Start means "from the earliest event".
type Horizon struct {
	Start time.Time
	Now   time.Time
}

// Point is one scaffold cell.
type Point struct {
	Month    model.Month `json:"-"`
	Label    string      `json:"month"`
	Category string      `json:"category"`
	Count    int         `json:"count"`
}

// Series is a chronologically ordered, gap-free set of points.
// Within a month, points follow the category order.
type Series struct {
	Months     []model.Month `json:"-"`
	Categories []string      `json:"categories"`
	Points     []Point       `json:"points"`
}

// Empty reports whether there was nothing to chart.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Count returns the count of one cell, zero when absent.
func (s Series) Count(m model.Month, category string) int {
	for _, p := range s.Points {
		if p.Month == m && p.Category == category {
			return p.Count
		}
	}
	return 0
}

// Labels returns the month labels in chronological order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Months))
	for i, m := range s.Months {
		out[i] = m.Label()
	}
	return out
}

type cell struct {
	month    model.Month
	category string
}

// Build lays events over the months × categories scaffold.
//
// The result is empty when there are no categories, or when there are no
// events and no explicit start. Events outside the horizon or in a
// category not listed are ignored.
func Build(events []Event, categories []string, h Horizon) Series {
	categories = dedupe(categories)
	if len(categories) == 0 {
		return Series{}
	}

	start := h.Start
	if start.IsZero() {
		for _, e := range events {
			if start.IsZero() || e.Date.Before(start) {
				start = e.Date
			}
		}
	}
	if start.IsZero() {
		return Series{}
	}

	months := model.MonthsBetween(start, h.Now)
	if len(months) == 0 {
		return Series{}
	}

	first, last := months[0], months[len(months)-1]
	counts := make(map[cell]int)
	for _, e := range events {
		m := model.MonthOf(e.Date)
		if m.Before(first) || last.Before(m) {
			continue
		}
		counts[cell{m, e.Category}]++
	}

	s := Series{Months: months, Categories: categories, Points: make([]Point, 0, len(months)*len(categories))}
	for _, m := range months {
		for _, c := range categories {
			s.Points = append(s.Points, Point{
				Month:    m,
				Label:    m.Label(),
				Category: c,
				Count:    counts[cell{m, c}],
			})
		}
	}
	return s
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
