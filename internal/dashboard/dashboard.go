// Package dashboard computes the leadership overview: headline counts and
// how students and servants spread over departments and classes.
package dashboard

import (
	"fmt"
	"sort"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
)

// KPIs are the headline table sizes.
type KPIs struct {
	Departments int `json:"departments"`
	Classes     int `json:"classes"`
	Servants    int `json:"servants"`
	Students    int `json:"students"`
	Activities  int `json:"activities"`
}

// Count is the size of one group.
type Count struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

// Kind selects students or servants for distributions and listings.
type Kind string

const (
	KindStudents Kind = "students"
	KindServants Kind = "servants"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStudents, KindServants:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown kind %q (want students or servants)", s)
}

// Person is one row of a listing.
type Person struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
}

// Overview is everything the dashboard shows without a selection.
type Overview struct {
	KPIs                  KPIs    `json:"kpis"`
	StudentsPerDepartment []Count `json:"students_per_department"`
	ServantsPerDepartment []Count `json:"servants_per_department"`
}

// Summarize returns the overview of a snapshot.
func Summarize(snap *model.Snapshot) Overview {
	return Overview{
		KPIs: KPIs{
			Departments: len(snap.Departments),
			Classes:     len(snap.Classes),
			Servants:    len(snap.Servants),
			Students:    len(snap.Students),
			Activities:  len(snap.Activities),
		},
		StudentsPerDepartment: StudentsPerDepartment(snap),
		ServantsPerDepartment: ServantsPerDepartment(snap),
	}
}

// StudentsPerDepartment counts students by department, largest first.
func StudentsPerDepartment(snap *model.Snapshot) []Count {
	var groups []string
	for _, s := range join.Students(snap) {
		groups = append(groups, s.DepartmentName)
	}
	return tally(groups)
}

// ServantsPerDepartment counts servants assigned to a class by department,
// largest first.
func ServantsPerDepartment(snap *model.Snapshot) []Count {
	var groups []string
	for _, sv := range join.Servants(snap) {
		groups = append(groups, sv.DepartmentName)
	}
	return tally(groups)
}

// ClassDistribution counts students or servants per class of a department,
// largest first. Classes without anyone are omitted.
func ClassDistribution(snap *model.Snapshot, depID int64, kind Kind) []Count {
	var groups []string
	for _, p := range people(snap, depID, kind) {
		groups = append(groups, p.ClassName)
	}
	return tally(groups)
}

// People lists the students or servants of a department by name. A non-zero
// classID narrows the listing to one class.
func People(snap *model.Snapshot, depID, classID int64, kind Kind) []Person {
	out := []Person{}
	for _, p := range people(snap, depID, kind) {
		if classID != 0 && p.classID != classID {
			continue
		}
		out = append(out, p.Person)
	}
	coll := model.NameCollator()
	sort.SliceStable(out, func(i, j int) bool { return coll.CompareString(out[i].Name, out[j].Name) < 0 })
	return out
}

type member struct {
	Person
	classID int64
}

func people(snap *model.Snapshot, depID int64, kind Kind) []member {
	var out []member
	if kind == KindServants {
		for _, sv := range join.Servants(snap) {
			if sv.DepartmentID == depID {
				out = append(out, member{Person{sv.ServantID, sv.ServantName, sv.ClassName}, sv.ClassID})
			}
		}
		return out
	}
	for _, s := range join.Students(snap) {
		if s.DepartmentID == depID {
			out = append(out, member{Person{s.StudentID, s.StudentName, s.ClassName}, s.ClassID})
		}
	}
	return out
}

func tally(groups []string) []Count {
	idx := make(map[string]int)
	out := []Count{}
	for _, g := range groups {
		i, ok := idx[g]
		if !ok {
			i = len(out)
			idx[g] = i
			out = append(out, Count{Group: g})
		}
		out[i].Count++
	}
	coll := model.NameCollator()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return coll.CompareString(out[i].Group, out[j].Group) < 0
	})
	return out
}
