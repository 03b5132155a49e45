// Package join builds the denormalized views every analytic consumes.
//
// Joins are inner joins over the snapshot tables. Rows whose foreign keys
// do not resolve are dropped without error, so counts computed downstream
// reflect only the rows that joined.
package join

import (
	"time"

	"github.com/roach88/flock/internal/model"
)

// StudentFull is Student ⋈ Class ⋈ Department.
type StudentFull struct {
	StudentID      int64  `json:"student_id"`
	StudentName    string `json:"student_name"`
	ClassID        int64  `json:"class_id"`
	ClassName      string `json:"class_name"`
	DepartmentID   int64  `json:"dep_id"`
	DepartmentName string `json:"dep_name"`
}

// AttendanceFull is Attendance ⋈ Activity ⋈ Class ⋈ Department ⋈ Student.
// Class and department come from the attendance row itself, not from the
// student's current class.
type AttendanceFull struct {
	AttendanceID   int64              `json:"attendance_id"`
	Date           time.Time          `json:"attendance_date"`
	StudentID      int64              `json:"student_id"`
	StudentName    string             `json:"student_name"`
	ActivityID     int64              `json:"activity_id"`
	ActivityName   string             `json:"activity_name"`
	ActivityType   model.ActivityType `json:"activity_type,omitempty"`
	ClassID        int64              `json:"class_id"`
	ClassName      string             `json:"class_name"`
	DepartmentID   int64              `json:"dep_id"`
	DepartmentName string             `json:"dep_name"`
	RecordedBy     int64              `json:"recorded_by_servant_id"`
}

// Month returns the month the attendance falls in.
func (a AttendanceFull) Month() model.Month {
	return model.MonthOf(a.Date)
}

// ServantFull is Servant ⋈ Class ⋈ Department for servants with a class.
type ServantFull struct {
	ServantID      int64      `json:"servant_id"`
	ServantName    string     `json:"servant_name"`
	Role           model.Role `json:"role"`
	ClassID        int64      `json:"class_id"`
	ClassName      string     `json:"class_name"`
	DepartmentID   int64      `json:"dep_id"`
	DepartmentName string     `json:"dep_name"`
}

type tables struct {
	departments map[int64]model.Department
	classes     map[int64]model.Class
	students    map[int64]model.Student
	activities  map[int64]model.Activity
}

func index(snap *model.Snapshot) tables {
	t := tables{
		departments: make(map[int64]model.Department, len(snap.Departments)),
		classes:     make(map[int64]model.Class, len(snap.Classes)),
		students:    make(map[int64]model.Student, len(snap.Students)),
		activities:  make(map[int64]model.Activity, len(snap.Activities)),
	}
	for _, d := range snap.Departments {
		t.departments[d.ID] = d
	}
	for _, c := range snap.Classes {
		t.classes[c.ID] = c
	}
	for _, s := range snap.Students {
		t.students[s.ID] = s
	}
	for _, a := range snap.Activities {
		t.activities[a.ID] = a
	}
	return t
}

// Students returns one StudentFull per student whose class and department
// resolve, in student table order.
func Students(snap *model.Snapshot) []StudentFull {
	t := index(snap)
	out := make([]StudentFull, 0, len(snap.Students))
	for _, s := range snap.Students {
		c, ok := t.classes[s.ClassID]
		if !ok {
			continue
		}
		d, ok := t.departments[c.DepartmentID]
		if !ok {
			continue
		}
		out = append(out, StudentFull{
			StudentID:      s.ID,
			StudentName:    s.Name,
			ClassID:        c.ID,
			ClassName:      c.Name,
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
		})
	}
	return out
}

// Attendance returns every attendance row whose activity, class, department
// and student resolve, in attendance table order.
func Attendance(snap *model.Snapshot) []AttendanceFull {
	t := index(snap)
	out := make([]AttendanceFull, 0, len(snap.Attendance))
	for _, a := range snap.Attendance {
		act, ok := t.activities[a.ActivityID]
		if !ok {
			continue
		}
		c, ok := t.classes[a.ClassID]
		if !ok {
			continue
		}
		d, ok := t.departments[a.DepartmentID]
		if !ok {
			continue
		}
		s, ok := t.students[a.StudentID]
		if !ok {
			continue
		}
		out = append(out, AttendanceFull{
			AttendanceID:   a.ID,
			Date:           a.Date,
			StudentID:      s.ID,
			StudentName:    s.Name,
			ActivityID:     act.ID,
			ActivityName:   act.Name,
			ActivityType:   act.Type,
			ClassID:        c.ID,
			ClassName:      c.Name,
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
			RecordedBy:     a.RecordedBy,
		})
	}
	return out
}

// Servants returns servants assigned to a class that resolves.
func Servants(snap *model.Snapshot) []ServantFull {
	t := index(snap)
	var out []ServantFull
	for _, sv := range snap.Servants {
		if sv.ClassID == nil {
			continue
		}
		c, ok := t.classes[*sv.ClassID]
		if !ok {
			continue
		}
		d, ok := t.departments[c.DepartmentID]
		if !ok {
			continue
		}
		out = append(out, ServantFull{
			ServantID:      sv.ID,
			ServantName:    sv.Name,
			Role:           sv.Role,
			ClassID:        c.ID,
			ClassName:      c.Name,
			DepartmentID:   d.ID,
			DepartmentName: d.Name,
		})
	}
	return out
}
