package testutil

import (
	"time"

	"github.com/roach88/flock/internal/model"
)

// Builder assembles a Snapshot for tests. Attendance rows take their class
// and department from the student's class at the time Attend is called.
type Builder struct {
	snap   model.Snapshot
	nextID int64
}

// NewBuilder creates an empty builder whose snapshot reports every optional
// column as present.
func NewBuilder() *Builder {
	return &Builder{snap: model.Snapshot{Schema: model.Schema{HasActivityType: true, HasCredential: true}}}
}

// Department adds a department. A zero manager means none.
func (b *Builder) Department(id int64, name string, manager int64) *Builder {
	d := model.Department{ID: id, Name: name}
	if manager != 0 {
		d.ManagerID = &manager
	}
	b.snap.Departments = append(b.snap.Departments, d)
	return b
}

// Class adds a class.
func (b *Builder) Class(id int64, name string, depID int64) *Builder {
	b.snap.Classes = append(b.snap.Classes, model.Class{ID: id, Name: name, DepartmentID: depID})
	return b
}

// Student adds a student.
func (b *Builder) Student(id int64, name string, classID int64) *Builder {
	b.snap.Students = append(b.snap.Students, model.Student{ID: id, Name: name, ClassID: classID})
	return b
}

// Servant adds a servant. A zero class means unassigned.
func (b *Builder) Servant(id int64, name string, role model.Role, classID int64) *Builder {
	sv := model.Servant{ID: id, Name: name, Role: role, Credential: "secret-" + name}
	if classID != 0 {
		sv.ClassID = &classID
	}
	b.snap.Servants = append(b.snap.Servants, sv)
	return b
}

// Activity adds an activity.
func (b *Builder) Activity(id int64, name string, typ model.ActivityType) *Builder {
	b.snap.Activities = append(b.snap.Activities, model.Activity{ID: id, Name: name, Type: typ})
	return b
}

// Attend records a student at an activity on a date.
func (b *Builder) Attend(studentID, activityID int64, date time.Time) *Builder {
	a := model.Attendance{StudentID: studentID, ActivityID: activityID, Date: model.Truncate(date)}
	for _, s := range b.snap.Students {
		if s.ID != studentID {
			continue
		}
		a.ClassID = s.ClassID
		for _, c := range b.snap.Classes {
			if c.ID == s.ClassID {
				a.DepartmentID = c.DepartmentID
			}
		}
	}
	b.nextID++
	a.ID = b.nextID
	b.snap.Attendance = append(b.snap.Attendance, a)
	return b
}

// Untyped marks the snapshot as coming from a store without activity types.
func (b *Builder) Untyped() *Builder {
	b.snap.Schema.HasActivityType = false
	for i := range b.snap.Activities {
		b.snap.Activities[i].Type = ""
	}
	return b
}

// Build returns the snapshot.
func (b *Builder) Build() *model.Snapshot {
	snap := b.snap
	return &snap
}

// Fixture ids used across package tests.
const (
	DepYouth  int64 = 1
	DepAdults int64 = 2

	ClassA int64 = 10
	ClassB int64 = 11
	ClassC int64 = 20

	StudentMina  int64 = 1
	StudentSara  int64 = 2
	StudentPeter int64 = 3
	StudentMark  int64 = 4

	ServantPriest  int64 = 100
	ServantManager int64 = 101
	ServantGeorge  int64 = 102
	ServantNadia   int64 = 103
	ServantChief   int64 = 104

	ActSunday  int64 = 1
	ActQuddas  int64 = 2
	ActRetreat int64 = 3
	ActTrip    int64 = 4
)

// Youth returns the shared fixture:
//
//   - Youth (managed by Maria) has classes A (Mina, Sara) and B (Peter);
//     Adults has class C (Mark).
//   - Mina never attended anything. Sara's last Retreat was 120 days ago,
//     her last Quddas 75 days ago. Peter's last Sunday Meeting was 44 days
//     ago and his Trip 30 days ago. Mark attends both core activities.
func Youth() *Builder {
	return NewBuilder().
		Department(DepYouth, "Youth", ServantManager).
		Department(DepAdults, "Adults", 0).
		Class(ClassA, "A", DepYouth).
		Class(ClassB, "B", DepYouth).
		Class(ClassC, "C", DepAdults).
		Student(StudentMina, "Mina", ClassA).
		Student(StudentSara, "Sara", ClassA).
		Student(StudentPeter, "Peter", ClassB).
		Student(StudentMark, "Mark", ClassC).
		Servant(ServantPriest, "Daniel", model.RolePriest, 0).
		Servant(ServantManager, "Maria", model.RoleDepartmentManager, 0).
		Servant(ServantGeorge, "George", model.RoleServant, ClassA).
		Servant(ServantNadia, "Nadia", model.RoleServant, 0).
		Servant(ServantChief, "Youssef", model.RoleChiefManager, ClassC).
		Activity(ActSunday, "Sunday Meeting", model.ActivityCore).
		Activity(ActQuddas, "Quddas (Liturgy)", model.ActivityCore).
		Activity(ActRetreat, "Retreat", model.ActivitySelective).
		Activity(ActTrip, "Trip", model.ActivitySelective).
		Attend(StudentSara, ActRetreat, DaysAgo(120)).
		Attend(StudentSara, ActSunday, DaysAgo(4)).
		Attend(StudentSara, ActQuddas, DaysAgo(75)).
		Attend(StudentPeter, ActTrip, DaysAgo(30)).
		Attend(StudentPeter, ActSunday, DaysAgo(74)).
		Attend(StudentPeter, ActSunday, DaysAgo(44)).
		Attend(StudentPeter, ActQuddas, DaysAgo(11)).
		Attend(StudentMark, ActSunday, DaysAgo(4)).
		Attend(StudentMark, ActQuddas, DaysAgo(4))
}
