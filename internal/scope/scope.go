// Package scope restricts what a session may see and change by role.
//
// Visibility is applied to the student population before any ranking or
// risk statistic is computed, so headline numbers describe only what the
// caller can see.
package scope

import (
	"errors"
	"fmt"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
)

// ErrForbidden is returned when a role may not perform an action.
var ErrForbidden = errors.New("forbidden")

// ErrUnassigned is returned when a servant has no class to act on.
var ErrUnassigned = errors.New("servant is not assigned to a class")

// Identity is the authenticated caller.
type Identity struct {
	ServantID int64      `json:"servant_id"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
}

// ManagedDepartments returns the ids of every department whose manager is
// servantID.
func ManagedDepartments(snap *model.Snapshot, servantID int64) map[int64]bool {
	ids := make(map[int64]bool)
	for _, d := range snap.Departments {
		if d.ManagerID != nil && *d.ManagerID == servantID {
			ids[d.ID] = true
		}
	}
	return ids
}

// AssignedClass returns the class of a servant, if any.
func AssignedClass(snap *model.Snapshot, servantID int64) (int64, bool) {
	sv, ok := snap.ServantByID(servantID)
	if !ok || sv.ClassID == nil {
		return 0, false
	}
	return *sv.ClassID, true
}

// Visible returns the subset of students the identity may see:
//   - Chief Manager and Priest see everyone.
//   - A Department Manager sees the departments they manage.
//   - A Servant sees their own class.
//
// Any other case yields an empty population.
func Visible(snap *model.Snapshot, students []join.StudentFull, id Identity) []join.StudentFull {
	var keep func(join.StudentFull) bool

	switch id.Role {
	case model.RoleChiefManager, model.RolePriest:
		keep = func(join.StudentFull) bool { return true }
	case model.RoleDepartmentManager:
		deps := ManagedDepartments(snap, id.ServantID)
		keep = func(s join.StudentFull) bool { return deps[s.DepartmentID] }
	case model.RoleServant:
		classID, ok := AssignedClass(snap, id.ServantID)
		if !ok {
			return nil
		}
		keep = func(s join.StudentFull) bool { return s.ClassID == classID }
	default:
		return nil
	}

	var out []join.StudentFull
	for _, s := range students {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// CanEnterAttendance checks that the identity may record attendance and
// returns the class it records for.
func CanEnterAttendance(snap *model.Snapshot, id Identity) (int64, error) {
	switch id.Role {
	case model.RoleChiefManager, model.RolePriest, model.RoleDepartmentManager, model.RoleServant:
	default:
		return 0, fmt.Errorf("enter attendance as %q: %w", id.Role, ErrForbidden)
	}
	classID, ok := AssignedClass(snap, id.ServantID)
	if !ok {
		return 0, ErrUnassigned
	}
	return classID, nil
}

// CanManageActivities checks that the identity may create or delete activities.
func CanManageActivities(id Identity) error {
	switch id.Role {
	case model.RoleChiefManager, model.RoleDepartmentManager, model.RolePriest:
		return nil
	}
	return fmt.Errorf("manage activities as %q: %w", id.Role, ErrForbidden)
}

// CanEditSettings checks that the identity may change risk thresholds,
// targets and other analysis settings.
func CanEditSettings(role model.Role) error {
	if role == model.RolePriest {
		return nil
	}
	return fmt.Errorf("edit settings as %q: %w", role, ErrForbidden)
}
