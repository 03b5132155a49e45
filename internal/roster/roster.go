// Package roster ranks students for a scarce opportunity by how long they
// have waited since their last Selective activity.
package roster

import (
	"sort"
	"time"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
)

// Priority is a roster tier.
type Priority string

const (
	// PriorityHigh means the student never took part.
	PriorityHigh Priority = "High"

	// PriorityMedium means the last participation is older than the
	// staleness threshold.
	PriorityMedium Priority = "Medium"

	// PriorityLow means the student took part recently.
	PriorityLow Priority = "Low"
)

// Entry is one ranked student.
type Entry struct {
	Rank              int        `json:"rank"`
	StudentID         int64      `json:"student_id"`
	StudentName       string     `json:"student_name"`
	ClassName         string     `json:"class_name"`
	DepartmentName    string     `json:"dep_name"`
	LastParticipation *time.Time `json:"last_participation_date"`
	DaysSince         *int       `json:"days_since,omitempty"`
	Priority          Priority   `json:"priority"`
}

// Never reports whether the student never took part.
func (e Entry) Never() bool { return e.LastParticipation == nil }

// Build ranks every student of population by last participation in any
// Selective activity: never first, then oldest first, ties by student id.
// The result has exactly one entry per student in population.
//
// Build refuses to run when the snapshot has no activity types.
func Build(population []join.StudentFull, snap *model.Snapshot, cfg *settings.Settings, now time.Time) ([]Entry, error) {
	if err := snap.RequireActivityTypes(); err != nil {
		return nil, err
	}

	last := make(map[int64]time.Time)
	for _, r := range join.Attendance(snap) {
		if r.ActivityType != model.ActivitySelective {
			continue
		}
		if cur, ok := last[r.StudentID]; !ok || r.Date.After(cur) {
			last[r.StudentID] = r.Date
		}
	}

	staleness := cfg.StalenessDays
	if staleness <= 0 {
		staleness = settings.DefaultStalenessDays
	}

	entries := make([]Entry, 0, len(population))
	for _, s := range population {
		e := Entry{
			StudentID:      s.StudentID,
			StudentName:    s.StudentName,
			ClassName:      s.ClassName,
			DepartmentName: s.DepartmentName,
			Priority:       PriorityHigh,
		}
		if d, ok := last[s.StudentID]; ok {
			date := d
			days := model.DaysSince(d, now)
			e.LastParticipation = &date
			e.DaysSince = &days
			e.Priority = PriorityLow
			if days > staleness {
				e.Priority = PriorityMedium
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Never() != b.Never():
			return a.Never()
		case !a.Never() && !a.LastParticipation.Equal(*b.LastParticipation):
			return a.LastParticipation.Before(*b.LastParticipation)
		}
		return a.StudentID < b.StudentID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
