package scope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/testutil"
)

func names(students []join.StudentFull) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.StudentName)
	}
	return out
}

func TestVisible(t *testing.T) {
	snap := testutil.Youth().Build()
	all := join.Students(snap)

	tests := []struct {
		name string
		id   Identity
		want []string
	}{
		{"chief manager sees all", Identity{ServantID: testutil.ServantChief, Role: model.RoleChiefManager}, []string{"Mina", "Sara", "Peter", "Mark"}},
		{"priest sees all", Identity{ServantID: testutil.ServantPriest, Role: model.RolePriest}, []string{"Mina", "Sara", "Peter", "Mark"}},
		{"department manager sees managed department", Identity{ServantID: testutil.ServantManager, Role: model.RoleDepartmentManager}, []string{"Mina", "Sara", "Peter"}},
		{"department manager without department sees nothing", Identity{ServantID: testutil.ServantNadia, Role: model.RoleDepartmentManager}, []string{}},
		{"servant sees own class", Identity{ServantID: testutil.ServantGeorge, Role: model.RoleServant}, []string{"Mina", "Sara"}},
		{"unassigned servant sees nothing", Identity{ServantID: testutil.ServantNadia, Role: model.RoleServant}, []string{}},
		{"unknown role sees nothing", Identity{ServantID: testutil.ServantChief, Role: "Visitor"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Visible(snap, all, tt.id)))
		})
	}
}

func TestVisible_ServantBoundary(t *testing.T) {
	snap := testutil.Youth().Build()
	all := join.Students(snap)

	got := Visible(snap, all, Identity{ServantID: testutil.ServantGeorge, Role: model.RoleServant})
	for _, s := range got {
		assert.Equal(t, testutil.ClassA, s.ClassID)
	}
	assert.Len(t, got, len(join.StudentsInClass(all, testutil.ClassA)))
}

func TestVisible_ManagerOfSeveralDepartments(t *testing.T) {
	snap := testutil.Youth().Build()
	m := testutil.ServantManager
	snap.Departments[1].ManagerID = &m

	got := Visible(snap, join.Students(snap), Identity{ServantID: m, Role: model.RoleDepartmentManager})
	assert.Len(t, got, 4)
}

func TestCanEnterAttendance(t *testing.T) {
	snap := testutil.Youth().Build()

	classID, err := CanEnterAttendance(snap, Identity{ServantID: testutil.ServantGeorge, Role: model.RoleServant})
	require.NoError(t, err)
	assert.Equal(t, testutil.ClassA, classID)

	_, err = CanEnterAttendance(snap, Identity{ServantID: testutil.ServantNadia, Role: model.RoleServant})
	assert.ErrorIs(t, err, ErrUnassigned)

	_, err = CanEnterAttendance(snap, Identity{ServantID: testutil.ServantGeorge, Role: "Visitor"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCanManageActivities(t *testing.T) {
	for _, r := range []model.Role{model.RoleChiefManager, model.RoleDepartmentManager, model.RolePriest} {
		assert.NoError(t, CanManageActivities(Identity{Role: r}), r)
	}
	err := CanManageActivities(Identity{Role: model.RoleServant})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestCanEditSettings(t *testing.T) {
	assert.NoError(t, CanEditSettings(model.RolePriest))
	for _, r := range []model.Role{model.RoleChiefManager, model.RoleDepartmentManager, model.RoleServant} {
		assert.ErrorIs(t, CanEditSettings(r), ErrForbidden)
	}
}
