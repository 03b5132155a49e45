// Package target measures each student's monthly attendance against the
// combined activity targets.
package target

import (
	"sort"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
)

// Status grades a student against the combined target.
type Status string

const (
	StatusMet     Status = "Met"
	StatusPartial Status = "Partial"
	StatusBehind  Status = "Behind"
)

// ActivityTarget is the resolved monthly minimum for one activity.
type ActivityTarget struct {
	Activity string `json:"activity"`
	Minimum  int    `json:"minimum"`
}

// Progress is one student's standing for the month.
type Progress struct {
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	Attendance  int    `json:"attendance"`
	Delta       int    `json:"delta"`
	Status      Status `json:"status"`
}

// Analysis is the target report for one class and month.
type Analysis struct {
	Month    string           `json:"month"`
	Targets  []ActivityTarget `json:"targets"`
	Total    int              `json:"total_target"`
	Students []Progress       `json:"students"`
}

// NoTargets reports whether every activity target is zero, in which case
// no student is graded.
func (a Analysis) NoTargets() bool { return a.Total == 0 }

// Resolve returns the target of every activity in the snapshot, by name.
func Resolve(snap *model.Snapshot, cfg *settings.Settings) []ActivityTarget {
	out := make([]ActivityTarget, 0, len(snap.Activities))
	for _, a := range snap.Activities {
		out = append(out, ActivityTarget{Activity: a.Name, Minimum: cfg.Target(a.Name)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Activity < out[j].Activity })
	return out
}

// Grade returns the status of attendance against total.
func Grade(attendance, total int) Status {
	switch {
	case attendance >= total:
		return StatusMet
	case 2*attendance >= total:
		return StatusPartial
	default:
		return StatusBehind
	}
}

// Analyze grades every student of a class on their total attendance in
// month, across all activities.
func Analyze(rows []join.AttendanceFull, students []join.StudentFull, snap *model.Snapshot, cfg *settings.Settings, classID int64, month model.Month) Analysis {
	a := Analysis{Month: month.Label(), Targets: Resolve(snap, cfg), Students: []Progress{}}
	for _, t := range a.Targets {
		a.Total += t.Minimum
	}
	if a.NoTargets() {
		return a
	}

	counts := make(map[int64]int)
	for _, r := range rows {
		if r.Month() == month {
			counts[r.StudentID]++
		}
	}

	for _, s := range join.StudentsInClass(students, classID) {
		n := counts[s.StudentID]
		a.Students = append(a.Students, Progress{
			StudentID:   s.StudentID,
			StudentName: s.StudentName,
			Attendance:  n,
			Delta:       n - a.Total,
			Status:      Grade(n, a.Total),
		})
	}
	return a
}
