package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/flock/internal/auth"
	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/session"
)

// Name lookups used by the commands. Unknown names are invalid input.

func lookupDepartment(snap *model.Snapshot, name string) (model.Department, error) {
	d, ok := snap.DepartmentByName(name)
	if !ok {
		return model.Department{}, fmt.Errorf("%w: unknown department %q", session.ErrInvalid, name)
	}
	return d, nil
}

// lookupClass finds a class by name, within depID when it is not zero.
// Without a department, a name shared by several departments is ambiguous.
func lookupClass(snap *model.Snapshot, name string, depID int64) (model.Class, error) {
	var found []model.Class
	for _, c := range snap.Classes {
		if c.Name == name && (depID == 0 || c.DepartmentID == depID) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return model.Class{}, fmt.Errorf("%w: unknown class %q", session.ErrInvalid, name)
	case 1:
		return found[0], nil
	}
	return model.Class{}, fmt.Errorf("%w: class %q exists in %d departments, set --department", session.ErrInvalid, name, len(found))
}

// lookupClassIn resolves a class name within the named department, or
// across all departments when department is empty.
func lookupClassIn(snap *model.Snapshot, department, name string) (model.Class, error) {
	if department == "" {
		return lookupClass(snap, name, 0)
	}
	d, err := lookupDepartment(snap, department)
	if err != nil {
		return model.Class{}, err
	}
	return lookupClass(snap, name, d.ID)
}

func lookupActivity(snap *model.Snapshot, name string) (model.Activity, error) {
	a, ok := snap.ActivityByName(name)
	if !ok {
		return model.Activity{}, fmt.Errorf("%w: unknown activity %q", session.ErrInvalid, name)
	}
	return a, nil
}

// lookupStudent finds a student among those the session may see. Names are
// matched after normalization so decomposed input still resolves.
func lookupStudent(students []join.StudentFull, name string) (join.StudentFull, error) {
	want := auth.NormalizeName(name)
	for _, s := range students {
		if auth.NormalizeName(s.StudentName) == want {
			return s, nil
		}
	}
	return join.StudentFull{}, fmt.Errorf("%w: no visible student named %q", session.ErrInvalid, name)
}

// parseMonth reads a --month flag. Empty means the current month.
func parseMonth(s string, sess *session.Session) (model.Month, error) {
	if s == "" {
		return model.MonthOf(sess.Now()), nil
	}
	m, err := model.ParseMonth(s)
	if err != nil {
		return model.Month{}, fmt.Errorf("%w: %v", session.ErrInvalid, err)
	}
	return m, nil
}

// visibleRows returns the attendance of the students the session may see.
func visibleRows(sess *session.Session) []join.AttendanceFull {
	return join.AttendanceOf(sess.Attendance(), join.StudentIDs(sess.Visible()))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
