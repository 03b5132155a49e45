package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/settings"
	"github.com/roach88/flock/internal/testutil"
)

func student(t *testing.T, snap *model.Snapshot, id int64) join.StudentFull {
	t.Helper()
	for _, s := range join.Students(snap) {
		if s.StudentID == id {
			return s
		}
	}
	t.Fatalf("student %d not in fixture", id)
	return join.StudentFull{}
}

func TestBuild_Sara(t *testing.T) {
	snap := testutil.Youth().Build()
	p := Build(join.Attendance(snap), student(t, snap, testutil.StudentSara), settings.Default(), testutil.Now)

	assert.Equal(t, 3, p.Total)
	require.NotNil(t, p.LastSeen)
	assert.Equal(t, testutil.DaysAgo(4), *p.LastSeen)
	// One of each; ties go to the first name.
	assert.Equal(t, "Quddas (Liturgy)", p.Favourite)
	assert.Equal(t, []string{"Quddas (Liturgy)", "Retreat", "Sunday Meeting"}, p.Activities)

	require.Len(t, p.Watched, 2)
	assert.Equal(t, "Quddas (Liturgy)", p.Watched[0].Activity)
	assert.Equal(t, 75, *p.Watched[0].DaysSince)
	assert.Equal(t, "Sunday Meeting", p.Watched[1].Activity)
	assert.Equal(t, 4, *p.Watched[1].DaysSince)

	assert.False(t, p.Trend.Empty())
	assert.Equal(t, "2026-June", p.Trend.Labels()[0])
}

func TestBuild_Favourite(t *testing.T) {
	snap := testutil.Youth().Build()
	p := Build(join.Attendance(snap), student(t, snap, testutil.StudentPeter), settings.Default(), testutil.Now)
	assert.Equal(t, "Sunday Meeting", p.Favourite)
	assert.Equal(t, 4, p.Total)
}

func TestBuild_NoAttendance(t *testing.T) {
	snap := testutil.Youth().Build()
	p := Build(join.Attendance(snap), student(t, snap, testutil.StudentMina), settings.Default(), testutil.Now)

	assert.Zero(t, p.Total)
	assert.Nil(t, p.LastSeen)
	assert.Empty(t, p.Favourite)
	for _, w := range p.Watched {
		assert.True(t, w.Never(), w.Activity)
	}
	assert.True(t, p.Trend.Empty())
	assert.Zero(t, p.Breakdown(Filter{}).Total)
}

func TestBreakdown(t *testing.T) {
	snap := testutil.Youth().Build()
	p := Build(join.Attendance(snap), student(t, snap, testutil.StudentPeter), settings.Default(), testutil.Now)

	all := p.Breakdown(Filter{})
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, []ActivityCount{{"Sunday Meeting", 2}, {"Quddas (Liturgy)", 1}, {"Trip", 1}}, all.Counts)
	require.Len(t, all.History, 4)
	assert.Equal(t, Visit{Date: testutil.DaysAgo(11), Activity: "Quddas (Liturgy)"}, all.History[0])
	assert.Equal(t, testutil.DaysAgo(74), all.History[3].Date)

	september := p.Breakdown(Filter{Months: []model.Month{{Year: 2026, Month: time.September}}})
	assert.Equal(t, 2, september.Total)
	assert.Equal(t, []ActivityCount{{"Sunday Meeting", 1}, {"Trip", 1}}, september.Counts)
	assert.Equal(t, "Trip", september.History[0].Activity)

	sunday := p.Breakdown(Filter{Activities: []string{"Sunday Meeting"}})
	assert.Equal(t, 2, sunday.Total)
	assert.Len(t, sunday.Counts, 1)

	none := p.Breakdown(Filter{Months: []model.Month{{Year: 2025, Month: time.January}}})
	assert.Zero(t, none.Total)
	assert.NotNil(t, none.History)
}
