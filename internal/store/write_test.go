package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/testutil"
)

func TestInsertAttendance(t *testing.T) {
	ctx := context.Background()
	s := createYouthStore(t)

	n, err := s.InsertAttendance(ctx, []model.Attendance{
		{StudentID: testutil.StudentMina, ActivityID: testutil.ActSunday, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth, Date: testutil.Now, RecordedBy: testutil.ServantGeorge},
		{StudentID: testutil.StudentSara, ActivityID: testutil.ActSunday, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth, Date: testutil.Now, RecordedBy: testutil.ServantGeorge},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Attendance, 11)
	last := snap.Attendance[10]
	assert.Equal(t, testutil.StudentSara, last.StudentID)
	assert.Equal(t, testutil.DaysAgo(0), last.Date)
	assert.Equal(t, testutil.ServantGeorge, last.RecordedBy)
}

func TestInsertAttendance_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := createYouthStore(t)

	_, err := s.InsertAttendance(ctx, []model.Attendance{
		{StudentID: testutil.StudentMina, ActivityID: testutil.ActSunday, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth, Date: testutil.Now},
		{StudentID: 999, ActivityID: testutil.ActSunday, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth, Date: testutil.Now},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReference)

	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Attendance, 9, "no row of a failed batch is stored")
}

func TestInsertAttendance_Empty(t *testing.T) {
	s := createYouthStore(t)
	n, err := s.InsertAttendance(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertActivity(t *testing.T) {
	ctx := context.Background()
	s := createYouthStore(t)

	id, err := s.InsertActivity(ctx, "Choir", model.ActivityCore)
	require.NoError(t, err)
	assert.Greater(t, id, testutil.ActTrip)

	untyped, err := s.InsertActivity(ctx, "Bible Study", "")
	require.NoError(t, err)

	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	a, ok := snap.ActivityByID(id)
	require.True(t, ok)
	assert.Equal(t, model.Activity{ID: id, Name: "Choir", Type: model.ActivityCore}, a)
	b, _ := snap.ActivityByID(untyped)
	assert.Empty(t, b.Type)

	_, err = s.InsertActivity(ctx, "Choir", model.ActivitySelective)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteActivity(t *testing.T) {
	ctx := context.Background()
	s := createYouthStore(t)

	id, err := s.InsertActivity(ctx, "Choir", model.ActivityCore)
	require.NoError(t, err)
	require.NoError(t, s.DeleteActivity(ctx, id))
	require.NoError(t, s.DeleteActivity(ctx, id), "deleting a missing id is not an error")

	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	_, ok := snap.ActivityByID(id)
	assert.False(t, ok)

	err = s.DeleteActivity(ctx, testutil.ActSunday)
	assert.ErrorIs(t, err, ErrReference, "attendance still points at it")
}

func TestImport_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	fx, err := ParseFixture(strings.NewReader(`
departments:
  - {id: 1, name: Youth}
classes:
  - {id: 10, name: A, department: 1}
students:
  - {id: 1, name: Mina, class: 99}
`))
	require.NoError(t, err)

	err = s.Import(ctx, fx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReference)

	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Departments)
}

func TestParseFixture_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "department:\n  - {id: 1, name: Youth}\n",
		"missing name":  "departments:\n  - {id: 1}\n",
		"bad role":      "servants:\n  - {id: 1, name: X, role: Visitor}\n",
		"bad type":      "activities:\n  - {id: 1, name: X, type: Weekly}\n",
		"zero id":       "students:\n  - {id: 0, name: X, class: 1}\n",
		"missing class": "classes:\n  - {id: 1, name: X}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixture(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseFixture_Empty(t *testing.T) {
	fx, err := ParseFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Students)
}
