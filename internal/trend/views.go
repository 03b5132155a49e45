package trend

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
)

// StudentTrend charts one student's attendance per activity. Categories are
// the activities the student ever attended, by name.
func StudentTrend(rows []join.AttendanceFull, studentID int64, h Horizon) Series {
	var events []Event
	var categories []string
	for _, r := range rows {
		if r.StudentID != studentID {
			continue
		}
		events = append(events, Event{Date: r.Date, Category: r.ActivityName})
		categories = append(categories, r.ActivityName)
	}
	sort.Strings(categories)
	return Build(events, categories, h)
}

// ClassTrend charts one activity across every class of a department.
// The horizon starts at the department's earliest attendance of that
// activity unless h.Start is set.
//
// Events are keyed by class id. Classes sharing a name are labelled
// "name #id" so they stay separate series.
func ClassTrend(rows []join.AttendanceFull, snap *model.Snapshot, depID, activityID int64, h Horizon) Series {
	classes := snap.ClassesOf(depID)
	labels := classLabels(classes)

	var events []Event
	for _, r := range rows {
		if r.DepartmentID != depID || r.ActivityID != activityID {
			continue
		}
		if label, ok := labels[r.ClassID]; ok {
			events = append(events, Event{Date: r.Date, Category: label})
		}
	}
	if len(events) == 0 && h.Start.IsZero() {
		return Series{}
	}

	categories := make([]string, 0, len(classes))
	for _, c := range classes {
		categories = append(categories, labels[c.ID])
	}
	return Build(events, categories, h)
}

func classLabels(classes []model.Class) map[int64]string {
	named := make(map[string]int, len(classes))
	for _, c := range classes {
		named[c.Name]++
	}
	labels := make(map[int64]string, len(classes))
	for _, c := range classes {
		labels[c.ID] = c.Name
		if named[c.Name] > 1 {
			labels[c.ID] = fmt.Sprintf("%s #%d", c.Name, c.ID)
		}
	}
	return labels
}

// Months lists the distinct months with attendance, newest first.
func Months(rows []join.AttendanceFull) []model.Month {
	seen := make(map[model.Month]bool)
	var out []model.Month
	for _, r := range rows {
		m := r.Month()
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}

// ClassComparison is one class's attendance of an activity in a month.
type ClassComparison struct {
	ClassID       int64   `json:"class_id"`
	ClassName     string  `json:"class_name"`
	Attendance    int     `json:"total_attendance"`
	Students      int     `json:"total_students"`
	Participation float64 `json:"participation_pct"`
}

// CompareClasses counts attendance of one activity in one month for the
// given classes of a department. With no classIDs every class of the
// department is compared. Classes outside the department are skipped.
func CompareClasses(rows []join.AttendanceFull, students []join.StudentFull, snap *model.Snapshot, depID, activityID int64, month model.Month, classIDs []int64) []ClassComparison {
	classes := snap.ClassesOf(depID)
	if len(classIDs) > 0 {
		want := make(map[int64]bool, len(classIDs))
		for _, id := range classIDs {
			want[id] = true
		}
		var picked []model.Class
		for _, c := range classes {
			if want[c.ID] {
				picked = append(picked, c)
			}
		}
		classes = picked
	}

	attended := make(map[int64]int)
	for _, r := range rows {
		if r.DepartmentID == depID && r.ActivityID == activityID && r.Month() == month {
			attended[r.ClassID]++
		}
	}
	enrolled := make(map[int64]int)
	for _, s := range students {
		enrolled[s.ClassID]++
	}

	out := make([]ClassComparison, 0, len(classes))
	for _, c := range classes {
		cc := ClassComparison{
			ClassID:    c.ID,
			ClassName:  c.Name,
			Attendance: attended[c.ID],
			Students:   enrolled[c.ID],
		}
		if cc.Students > 0 {
			cc.Participation = math.Round(float64(cc.Attendance)/float64(cc.Students)*1000) / 10
		}
		out = append(out, cc)
	}
	return out
}

// StudentCount is one student's attendance count.
type StudentCount struct {
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	Count       int    `json:"count"`
}

// StudentCounts counts attendance of one activity in one month for every
// student of a class, including those who never came. Highest count first,
// then by name.
func StudentCounts(rows []join.AttendanceFull, students []join.StudentFull, classID, activityID int64, month model.Month) []StudentCount {
	counts := make(map[int64]int)
	for _, r := range rows {
		if r.ClassID == classID && r.ActivityID == activityID && r.Month() == month {
			counts[r.StudentID]++
		}
	}

	var out []StudentCount
	for _, s := range students {
		if s.ClassID != classID {
			continue
		}
		out = append(out, StudentCount{StudentID: s.StudentID, StudentName: s.StudentName, Count: counts[s.StudentID]})
	}

	coll := model.NameCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return coll.CompareString(out[i].StudentName, out[j].StudentName) < 0
	})
	return out
}
