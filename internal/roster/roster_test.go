package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
	"github.com/roach88/flock/internal/testutil"
)

func TestBuild_YouthClassA(t *testing.T) {
	snap := testutil.Youth().Build()
	population := join.StudentsInClass(join.Students(snap), testutil.ClassA)

	entries, err := Build(population, snap, settings.Default(), testutil.Now)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Mina", entries[0].StudentName)
	assert.Equal(t, PriorityHigh, entries[0].Priority)
	assert.True(t, entries[0].Never())
	assert.Nil(t, entries[0].DaysSince)

	assert.Equal(t, "Sara", entries[1].StudentName)
	assert.Equal(t, PriorityMedium, entries[1].Priority)
	require.NotNil(t, entries[1].DaysSince)
	assert.Equal(t, 120, *entries[1].DaysSince)
	assert.Equal(t, testutil.DaysAgo(120), *entries[1].LastParticipation)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestBuild_FullPopulationOrder(t *testing.T) {
	snap := testutil.Youth().Build()

	entries, err := Build(join.Students(snap), snap, settings.Default(), testutil.Now)
	require.NoError(t, err)

	var got []string
	for _, e := range entries {
		got = append(got, e.StudentName+":"+string(e.Priority))
	}
	// Never-participated ties break by student id (Mina=1, Mark=4).
	assert.Equal(t, []string{"Mina:High", "Mark:High", "Sara:Medium", "Peter:Low"}, got)
}

func TestBuild_Completeness(t *testing.T) {
	b := testutil.Youth()
	for i := int64(0); i < 25; i++ {
		b.Student(200+i, "Extra", testutil.ClassB)
		if i%3 == 0 {
			b.Attend(200+i, testutil.ActRetreat, testutil.DaysAgo(int(i)*7))
			b.Attend(200+i, testutil.ActTrip, testutil.DaysAgo(int(i)*5))
		}
	}
	snap := b.Build()
	population := join.Students(snap)

	entries, err := Build(population, snap, settings.Default(), testutil.Now)
	require.NoError(t, err)
	require.Len(t, entries, len(population))

	seen := make(map[int64]int)
	for _, e := range entries {
		seen[e.StudentID]++
	}
	for _, s := range population {
		assert.Equal(t, 1, seen[s.StudentID], "student %d", s.StudentID)
	}

	// Every never-participated student ranks above every dated one.
	lastNever, firstDated := -1, len(entries)
	for i, e := range entries {
		if e.Never() {
			lastNever = i
		} else if i < firstDated {
			firstDated = i
		}
	}
	assert.Less(t, lastNever, firstDated)
}

func TestBuild_IgnoresCoreActivities(t *testing.T) {
	snap := testutil.Youth().Build()
	population := join.StudentsInClass(join.Students(snap), testutil.ClassC)

	// Mark attends core activities only.
	entries, err := Build(population, snap, settings.Default(), testutil.Now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, PriorityHigh, entries[0].Priority)
}

func TestBuild_StalenessIsConfigurable(t *testing.T) {
	snap := testutil.Youth().Build()
	cfg := settings.Default()
	require.NoError(t, cfg.SetStaleness(model.RolePriest, 150))

	entries, err := Build(join.StudentsInClass(join.Students(snap), testutil.ClassA), snap, cfg, testutil.Now)
	require.NoError(t, err)
	assert.Equal(t, PriorityLow, entries[1].Priority)
}

func TestBuild_EmptyPopulation(t *testing.T) {
	snap := testutil.Youth().Build()
	entries, err := Build(nil, snap, settings.Default(), testutil.Now)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuild_RequiresActivityTypes(t *testing.T) {
	snap := testutil.Youth().Untyped().Build()
	_, err := Build(join.Students(snap), snap, settings.Default(), testutil.Now)
	require.Error(t, err)
	assert.True(t, model.IsPreconditionError(err))
}

func TestBuild_IgnoresDanglingAttendance(t *testing.T) {
	snap := testutil.Youth().Attend(testutil.StudentMina, testutil.ActRetreat, testutil.DaysAgo(2)).Build()
	snap.Attendance[len(snap.Attendance)-1].ClassID = 99

	population := join.StudentsInClass(join.Students(snap), testutil.ClassA)
	entries, err := Build(population, snap, settings.Default(), testutil.Now)
	require.NoError(t, err)

	require.Equal(t, "Mina", entries[0].StudentName)
	assert.True(t, entries[0].Never(), "a row whose class no longer resolves does not count")
	assert.Equal(t, PriorityHigh, entries[0].Priority)
}
