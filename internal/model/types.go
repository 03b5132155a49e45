package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the organizational role of a servant. It decides what a session
// may see and change.
type Role string

// Recognized roles. The string values match what the store holds.
const (
	RoleChiefManager      Role = "Chief Manager"
	RolePriest            Role = "Priest"
	RoleDepartmentManager Role = "Department Manager"
	RoleServant           Role = "Servant"
)

// Roles lists every recognized role in rank order.
var Roles = []Role{RoleChiefManager, RolePriest, RoleDepartmentManager, RoleServant}

// ParseRole converts a stored role string into a Role.
// Surrounding whitespace is ignored; anything unrecognized is an error.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ActivityType separates regular activities from scarce opportunities.
type ActivityType string

const (
	// ActivityCore is a regular, recurring activity such as a weekly service.
	ActivityCore ActivityType = "Core"

	// ActivitySelective is a scarce opportunity subject to fair allocation.
	ActivitySelective ActivityType = "Selective"
)

// ParseActivityType converts a stored type string. The empty string is
// returned unchanged so callers can tell "untyped" apart from invalid.
func ParseActivityType(s string) (ActivityType, error) {
	switch s = strings.TrimSpace(s); s {
	case "":
		return "", nil
	case string(ActivityCore):
		return ActivityCore, nil
	case string(ActivitySelective):
		return ActivitySelective, nil
	}
	return "", fmt.Errorf("unknown activity type %q", s)
}

// Department groups classes under one optional manager.
type Department struct {
	ID        int64  `json:"dep_id"`
	Name      string `json:"dep_name"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

// Class belongs to exactly one department.
type Class struct {
	ID           int64  `json:"class_id"`
	Name         string `json:"class_name"`
	DepartmentID int64  `json:"dep_id"`
}

// Student belongs to exactly one class.
type Student struct {
	ID      int64  `json:"student_id"`
	Name    string `json:"student_name"`
	ClassID int64  `json:"class_id"`
}

// Servant is a staff member. Unassigned servants have a nil ClassID.
type Servant struct {
	ID         int64  `json:"servant_id"`
	Name       string `json:"servant_name"`
	Role       Role   `json:"role"`
	ClassID    *int64 `json:"class_id,omitempty"`
	Credential string `json:"-"`
}

// Activity is something students attend.
type Activity struct {
	ID   int64        `json:"activity_id"`
	Name string       `json:"activity_name"`
	Type ActivityType `json:"activity_type,omitempty"`
}

// Attendance records one student present at one activity on one date.
//
// ClassID and DepartmentID are captured when the row is recorded and are
// never re-derived from the student's current class.
type Attendance struct {
	ID           int64     `json:"attendance_id"`
	StudentID    int64     `json:"student_id"`
	ActivityID   int64     `json:"activity_id"`
	ClassID      int64     `json:"class_id"`
	DepartmentID int64     `json:"dep_id"`
	Date         time.Time `json:"attendance_date"`
	RecordedBy   int64     `json:"recorded_by_servant_id"`
}
