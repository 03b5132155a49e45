// Package risk flags students whose absence from an activity exceeds its
// configured threshold, or who never attended it at all.
package risk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
)

// ReasonSeparator joins a student's reasons into one string.
const ReasonSeparator = "; "

// Flag is one at-risk student with every reason merged.
type Flag struct {
	StudentID      int64    `json:"student_id"`
	StudentName    string   `json:"student_name"`
	ClassName      string   `json:"class_name"`
	DepartmentName string   `json:"dep_name"`
	Reasons        []string `json:"reasons"`
}

// Reason returns the deduplicated reasons as one string.
func (f Flag) Reason() string { return strings.Join(f.Reasons, ReasonSeparator) }

// Report is the outcome of one detection pass.
type Report struct {
	Rules []settings.Rule `json:"rules"`
	Flags []Flag          `json:"flags"`
}

// Count is the number of distinct flagged students.
func (r Report) Count() int { return len(r.Flags) }

// Empty reports whether nobody was flagged.
func (r Report) Empty() bool { return len(r.Flags) == 0 }

// NeverAttended is the reason given to a student with no row for activity.
func NeverAttended(activity string) string {
	return fmt.Sprintf("Never attended '%s'", activity)
}

// AbsentFor is the reason given to a student whose last attendance is
// older than the threshold.
func AbsentFor(activity string, days, threshold int) string {
	return fmt.Sprintf("Absent from '%s' for %d days (>%d day threshold)", activity, days, threshold)
}

// Detect evaluates every risk rule in cfg over population.
//
// For each rule, students in population without a single attendance of the
// named activity are flagged as never attended; students whose last
// attendance is more than the threshold days before now are flagged as
// absent. A student appears once with all reasons merged.
//
// Detect refuses to run when the snapshot has no activity types.
func Detect(population []join.StudentFull, snap *model.Snapshot, cfg *settings.Settings, now time.Time) (Report, error) {
	if err := snap.RequireActivityTypes(); err != nil {
		return Report{}, err
	}

	report := Report{Rules: cfg.Rules()}
	inScope := join.StudentIDs(population)

	flags := make(map[int64]*Flag)
	add := func(s join.StudentFull, reason string) {
		f, ok := flags[s.StudentID]
		if !ok {
			f = &Flag{
				StudentID:      s.StudentID,
				StudentName:    s.StudentName,
				ClassName:      s.ClassName,
				DepartmentName: s.DepartmentName,
			}
			flags[s.StudentID] = f
		}
		for _, r := range f.Reasons {
			if r == reason {
				return
			}
		}
		f.Reasons = append(f.Reasons, reason)
	}

	rows := join.Attendance(snap)
	for _, rule := range report.Rules {
		lastSeen := make(map[int64]time.Time)
		for _, r := range rows {
			if r.ActivityName != rule.Activity || !inScope[r.StudentID] {
				continue
			}
			if cur, ok := lastSeen[r.StudentID]; !ok || r.Date.After(cur) {
				lastSeen[r.StudentID] = r.Date
			}
		}

		for _, s := range population {
			seen, ok := lastSeen[s.StudentID]
			if !ok {
				add(s, NeverAttended(rule.Activity))
				continue
			}
			if days := model.DaysSince(seen, now); days > rule.Days {
				add(s, AbsentFor(rule.Activity, days, rule.Days))
			}
		}
	}

	report.Flags = make([]Flag, 0, len(flags))
	for _, f := range flags {
		report.Flags = append(report.Flags, *f)
	}
	coll := model.NameCollator()
	sort.Slice(report.Flags, func(i, j int) bool {
		a, b := report.Flags[i], report.Flags[j]
		if c := coll.CompareString(a.DepartmentName, b.DepartmentName); c != 0 {
			return c < 0
		}
		if c := coll.CompareString(a.ClassName, b.ClassName); c != 0 {
			return c < 0
		}
		if c := coll.CompareString(a.StudentName, b.StudentName); c != 0 {
			return c < 0
		}
		return a.StudentID < b.StudentID
	})
	return report, nil
}
