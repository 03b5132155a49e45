package model

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Schema records which optional columns the store provided.
type Schema struct {
	HasActivityType bool `json:"has_activity_type"`
	HasCredential   bool `json:"has_credential"`
}

// Snapshot is a point-in-time copy of all six tables.
// It is never mutated after loading; a write is followed by a fresh load.
type Snapshot struct {
	Departments []Department `json:"departments"`
	Classes     []Class      `json:"classes"`
	Students    []Student    `json:"students"`
	Servants    []Servant    `json:"servants"`
	Activities  []Activity   `json:"activities"`
	Attendance  []Attendance `json:"attendance"`
	Schema      Schema       `json:"schema"`
}

// RequireActivityTypes fails when activities carry no Core/Selective type.
func (s *Snapshot) RequireActivityTypes() error {
	if !s.Schema.HasActivityType {
		return NewMissingActivityTypeError()
	}
	return nil
}

// DepartmentByID returns the department with the given id.
func (s *Snapshot) DepartmentByID(id int64) (Department, bool) {
	for _, d := range s.Departments {
		if d.ID == id {
			return d, true
		}
	}
	return Department{}, false
}

// DepartmentByName returns the first department with the given name.
func (s *Snapshot) DepartmentByName(name string) (Department, bool) {
	for _, d := range s.Departments {
		if d.Name == name {
			return d, true
		}
	}
	return Department{}, false
}

// ClassByID returns the class with the given id.
func (s *Snapshot) ClassByID(id int64) (Class, bool) {
	for _, c := range s.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

// ClassByName returns the first class with the given name.
func (s *Snapshot) ClassByName(name string) (Class, bool) {
	for _, c := range s.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return Class{}, false
}

// ClassesOf lists the classes of a department in table order.
func (s *Snapshot) ClassesOf(depID int64) []Class {
	var out []Class
	for _, c := range s.Classes {
		if c.DepartmentID == depID {
			out = append(out, c)
		}
	}
	return out
}

// ServantByID returns the servant with the given id.
func (s *Snapshot) ServantByID(id int64) (Servant, bool) {
	for _, sv := range s.Servants {
		if sv.ID == id {
			return sv, true
		}
	}
	return Servant{}, false
}

// ActivityByID returns the activity with the given id.
func (s *Snapshot) ActivityByID(id int64) (Activity, bool) {
	for _, a := range s.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

// ActivityByName returns the first activity with the given name.
func (s *Snapshot) ActivityByName(name string) (Activity, bool) {
	for _, a := range s.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// NameCollator returns a case-insensitive collator for ordering people
// and classes by name. Collators are not safe for concurrent use, so each
// sort gets its own.
func NameCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase, collate.Loose)
}
