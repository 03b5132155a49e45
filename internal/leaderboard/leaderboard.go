// Package leaderboard ranks students by how often they attended within a
// period.
package leaderboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
)

// Period selects the attendance window.
type Period string

const (
	ThisMonth Period = "this-month"
	Last30    Period = "last-30"
	Last90    Period = "last-90"
	AllTime   Period = "all-time"
)

// Periods lists every supported period.
var Periods = []Period{ThisMonth, Last30, Last90, AllTime}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q (want one of %v)", s, Periods)
}

// Cutoff returns the earliest date counted, or the zero time for AllTime.
func (p Period) Cutoff(now time.Time) time.Time {
	today := model.Truncate(now)
	switch p {
	case ThisMonth:
		return model.MonthOf(now).Start()
	case Last30:
		return today.AddDate(0, 0, -30)
	case Last90:
		return today.AddDate(0, 0, -90)
	}
	return time.Time{}
}

// Entry is one ranked student.
type Entry struct {
	Rank        int    `json:"rank"`
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassName   string `json:"class_name"`
	Total       int    `json:"total_attendance"`
}

// Board is the ranked result. An empty board carries no entries.
type Board struct {
	Period  Period  `json:"period"`
	Cutoff  string  `json:"cutoff,omitempty"`
	Entries []Entry `json:"entries"`
}

// Empty reports whether no student attended in the period.
func (b Board) Empty() bool { return len(b.Entries) == 0 }

// Build counts attendance per student of population since the period cutoff
// and keeps the top size students, most attendance first, ties by name.
// Students without attendance in the period are not ranked.
func Build(rows []join.AttendanceFull, population []join.StudentFull, period Period, now time.Time, size int) Board {
	board := Board{Period: period, Entries: []Entry{}}
	cutoff := period.Cutoff(now)
	if !cutoff.IsZero() {
		board.Cutoff = cutoff.Format(model.DateLayout)
	}

	counts := make(map[int64]int)
	for _, r := range rows {
		if r.Date.Before(cutoff) {
			continue
		}
		counts[r.StudentID]++
	}

	for _, s := range population {
		n, ok := counts[s.StudentID]
		if !ok {
			continue
		}
		board.Entries = append(board.Entries, Entry{
			StudentID:   s.StudentID,
			StudentName: s.StudentName,
			ClassName:   s.ClassName,
			Total:       n,
		})
	}

	coll := model.NameCollator()
	sort.SliceStable(board.Entries, func(i, j int) bool {
		a, b := board.Entries[i], board.Entries[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if c := coll.CompareString(a.StudentName, b.StudentName); c != 0 {
			return c < 0
		}
		return a.StudentID < b.StudentID
	})

	if size > 0 && len(board.Entries) > size {
		board.Entries = board.Entries[:size]
	}
	for i := range board.Entries {
		board.Entries[i].Rank = i + 1
	}
	return board
}
