// Package profile summarizes one student's engagement history.
package profile

import (
	"sort"
	"time"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
	"github.com/roach88/flock/internal/trend"
)

// Watch is the last attendance of one watched activity.
type Watch struct {
	Activity  string     `json:"activity"`
	LastSeen  *time.Time `json:"last_seen"`
	DaysSince *int       `json:"days_since,omitempty"`
}

// Never reports whether the student never attended the activity.
func (w Watch) Never() bool { return w.LastSeen == nil }

// Profile is the at-a-glance view of a student.
type Profile struct {
	Student    join.StudentFull `json:"student"`
	Total      int              `json:"total_attendance"`
	LastSeen   *time.Time       `json:"last_seen"`
	Favourite  string           `json:"favourite_activity,omitempty"`
	Watched    []Watch          `json:"watched"`
	Months     []model.Month    `json:"-"`
	Activities []string         `json:"activities"`
	Trend      trend.Series     `json:"trend"`

	rows []join.AttendanceFull
}

// Build assembles the profile of student from all attendance rows. The
// watched activities are the ones with a risk threshold in cfg.
func Build(rows []join.AttendanceFull, student join.StudentFull, cfg *settings.Settings, now time.Time) Profile {
	p := Profile{Student: student, Watched: []Watch{}, Activities: []string{}}
	for _, r := range rows {
		if r.StudentID == student.StudentID {
			p.rows = append(p.rows, r)
		}
	}
	p.Total = len(p.rows)

	counts := make(map[string]int)
	last := make(map[string]time.Time)
	for _, r := range p.rows {
		if p.LastSeen == nil || r.Date.After(*p.LastSeen) {
			d := r.Date
			p.LastSeen = &d
		}
		counts[r.ActivityName]++
		if cur, ok := last[r.ActivityName]; !ok || r.Date.After(cur) {
			last[r.ActivityName] = r.Date
		}
	}

	for name := range counts {
		p.Activities = append(p.Activities, name)
	}
	sort.Strings(p.Activities)
	for _, name := range p.Activities {
		if p.Favourite == "" || counts[name] > counts[p.Favourite] {
			p.Favourite = name
		}
	}

	for _, rule := range cfg.Rules() {
		w := Watch{Activity: rule.Activity}
		if d, ok := last[rule.Activity]; ok {
			days := model.DaysSince(d, now)
			w.LastSeen, w.DaysSince = &d, &days
		}
		p.Watched = append(p.Watched, w)
	}

	p.Months = trend.Months(p.rows)
	p.Trend = trend.StudentTrend(p.rows, student.StudentID, trend.Horizon{Now: now})
	return p
}

// Filter narrows the breakdown. An empty list keeps everything.
type Filter struct {
	Months     []model.Month
	Activities []string
}

// ActivityCount is how often an activity was attended.
type ActivityCount struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

// Visit is one attendance in the history.
type Visit struct {
	Date     time.Time `json:"date"`
	Activity string    `json:"activity"`
}

// Breakdown is the filtered detail of a profile.
type Breakdown struct {
	Total   int             `json:"total"`
	Counts  []ActivityCount `json:"counts"`
	History []Visit         `json:"history"`
}

// Breakdown returns activity counts, most attended first, and the history,
// newest first, of the attendance matching f.
func (p Profile) Breakdown(f Filter) Breakdown {
	months := make(map[model.Month]bool, len(f.Months))
	for _, m := range f.Months {
		months[m] = true
	}
	activities := make(map[string]bool, len(f.Activities))
	for _, a := range f.Activities {
		activities[a] = true
	}

	b := Breakdown{Counts: []ActivityCount{}, History: []Visit{}}
	idx := make(map[string]int)
	for _, r := range p.rows {
		if len(months) > 0 && !months[r.Month()] {
			continue
		}
		if len(activities) > 0 && !activities[r.ActivityName] {
			continue
		}
		b.Total++
		b.History = append(b.History, Visit{Date: r.Date, Activity: r.ActivityName})
		i, ok := idx[r.ActivityName]
		if !ok {
			i = len(b.Counts)
			idx[r.ActivityName] = i
			b.Counts = append(b.Counts, ActivityCount{Activity: r.ActivityName})
		}
		b.Counts[i].Count++
	}

	sort.SliceStable(b.Counts, func(i, j int) bool {
		if b.Counts[i].Count != b.Counts[j].Count {
			return b.Counts[i].Count > b.Counts[j].Count
		}
		return b.Counts[i].Activity < b.Counts[j].Activity
	})
	sort.SliceStable(b.History, func(i, j int) bool { return b.History[i].Date.After(b.History[j].Date) })
	return b
}
