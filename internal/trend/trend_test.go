package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/testutil"
)

func month(y int, m time.Month) model.Month { return model.Month{Year: y, Month: m} }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestBuild_FillsGaps(t *testing.T) {
	events := []Event{
		{Date: date(2026, 1, 5), Category: "Sunday Meeting"},
		{Date: date(2026, 1, 12), Category: "Sunday Meeting"},
		{Date: date(2026, 3, 1), Category: "Retreat"},
	}
	s := Build(events, []string{"Retreat", "Sunday Meeting"}, Horizon{Now: date(2026, 4, 10)})

	require.False(t, s.Empty())
	assert.Equal(t, []string{"2026-January", "2026-February", "2026-March", "2026-April"}, s.Labels())
	require.Len(t, s.Points, 4*2, "one point per month and category")

	assert.Equal(t, 2, s.Count(month(2026, 1), "Sunday Meeting"))
	assert.Equal(t, 0, s.Count(month(2026, 2), "Sunday Meeting"))
	assert.Equal(t, 0, s.Count(month(2026, 2), "Retreat"))
	assert.Equal(t, 1, s.Count(month(2026, 3), "Retreat"))
	assert.Equal(t, 0, s.Count(month(2026, 4), "Retreat"))

	for _, p := range s.Points {
		assert.GreaterOrEqual(t, p.Count, 0)
	}
}

func TestBuild_ChronologicalNotLexical(t *testing.T) {
	events := []Event{{Date: date(2025, 12, 1), Category: "x"}}
	s := Build(events, []string{"x"}, Horizon{Now: date(2026, 2, 1)})

	// Lexically "2026-February" sorts before "2026-January".
	assert.Equal(t, []string{"2025-December", "2026-January", "2026-February"}, s.Labels())
	for i := 1; i < len(s.Points); i++ {
		assert.False(t, s.Points[i].Month.Before(s.Points[i-1].Month))
	}
}

func TestBuild_EmptySignals(t *testing.T) {
	now := date(2026, 4, 10)

	assert.True(t, Build(nil, []string{"x"}, Horizon{Now: now}).Empty(), "no events and no start")
	assert.True(t, Build([]Event{{Date: date(2026, 1, 1), Category: "x"}}, nil, Horizon{Now: now}).Empty(), "no categories")
	assert.True(t, Build(nil, []string{"x"}, Horizon{Start: date(2026, 6, 1), Now: now}).Empty(), "start after now")
}

func TestBuild_ExplicitStartWithNoEventsIsAllZero(t *testing.T) {
	s := Build(nil, []string{"Retreat"}, Horizon{Start: date(2026, 8, 20), Now: date(2026, 10, 15)})

	require.Len(t, s.Points, 3)
	for _, p := range s.Points {
		assert.Equal(t, 0, p.Count)
		assert.Equal(t, "Retreat", p.Category)
	}
}

func TestBuild_IgnoresOutOfScope(t *testing.T) {
	events := []Event{
		{Date: date(2026, 1, 1), Category: "before"},
		{Date: date(2026, 1, 1), Category: "x"},
		{Date: date(2026, 5, 1), Category: "x"},
		{Date: date(2026, 3, 1), Category: "other"},
	}
	s := Build(events, []string{"x", "x"}, Horizon{Start: date(2026, 2, 1), Now: date(2026, 3, 31)})

	assert.Equal(t, []string{"x"}, s.Categories)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 0, s.Points[0].Count)
	assert.Equal(t, 0, s.Points[1].Count)
}

func TestStudentTrend(t *testing.T) {
	snap := testutil.Youth().Build()
	rows := join.Attendance(snap)

	s := StudentTrend(rows, testutil.StudentSara, Horizon{Now: testutil.Now})
	assert.Equal(t, []string{"Quddas (Liturgy)", "Retreat", "Sunday Meeting"}, s.Categories)
	assert.Equal(t, []string{"2026-June", "2026-July", "2026-August", "2026-September", "2026-October"}, s.Labels())
	require.Len(t, s.Points, 15)

	assert.Equal(t, 1, s.Count(month(2026, 6), "Retreat"))
	assert.Equal(t, 1, s.Count(month(2026, 8), "Quddas (Liturgy)"))
	assert.Equal(t, 1, s.Count(month(2026, 10), "Sunday Meeting"))
	assert.Equal(t, 0, s.Count(month(2026, 7), "Retreat"))

	total := 0
	for _, p := range s.Points {
		total += p.Count
	}
	assert.Equal(t, 3, total)
}

func TestStudentTrend_NoAttendance(t *testing.T) {
	snap := testutil.Youth().Build()
	s := StudentTrend(join.Attendance(snap), testutil.StudentMina, Horizon{Now: testutil.Now})
	assert.True(t, s.Empty())
}

func TestClassTrend(t *testing.T) {
	snap := testutil.Youth().Build()
	rows := join.Attendance(snap)

	s := ClassTrend(rows, snap, testutil.DepYouth, testutil.ActSunday, Horizon{Now: testutil.Now})
	assert.Equal(t, []string{"A", "B"}, s.Categories)
	assert.Equal(t, []string{"2026-August", "2026-September", "2026-October"}, s.Labels())

	assert.Equal(t, 0, s.Count(month(2026, 8), "A"))
	assert.Equal(t, 1, s.Count(month(2026, 8), "B"))
	assert.Equal(t, 1, s.Count(month(2026, 9), "B"))
	assert.Equal(t, 1, s.Count(month(2026, 10), "A"))
	assert.Equal(t, 0, s.Count(month(2026, 10), "B"))

	empty := ClassTrend(rows, snap, testutil.DepAdults, testutil.ActRetreat, Horizon{Now: testutil.Now})
	assert.True(t, empty.Empty())
}

func TestClassTrend_SameNamedClasses(t *testing.T) {
	snap := testutil.Youth().
		Class(12, "A", testutil.DepYouth).
		Student(50, "Lydia", 12).
		Attend(50, testutil.ActSunday, testutil.DaysAgo(4)).
		Build()

	s := ClassTrend(join.Attendance(snap), snap, testutil.DepYouth, testutil.ActSunday, Horizon{Now: testutil.Now})
	assert.Equal(t, []string{"A #10", "B", "A #12"}, s.Categories)
	assert.Equal(t, 1, s.Count(month(2026, 10), "A #10"), "Sara")
	assert.Equal(t, 1, s.Count(month(2026, 10), "A #12"), "Lydia")
}

func TestMonths(t *testing.T) {
	snap := testutil.Youth().Build()
	got := Months(join.Attendance(snap))
	assert.Equal(t, []model.Month{month(2026, 10), month(2026, 9), month(2026, 8), month(2026, 6)}, got)
	assert.Empty(t, Months(nil))
}

func TestCompareClasses(t *testing.T) {
	snap := testutil.Youth().Build()
	rows := join.Attendance(snap)
	students := join.Students(snap)

	got := CompareClasses(rows, students, snap, testutil.DepYouth, testutil.ActSunday, month(2026, 10), nil)
	require.Len(t, got, 2)
	assert.Equal(t, ClassComparison{ClassID: testutil.ClassA, ClassName: "A", Attendance: 1, Students: 2, Participation: 50}, got[0])
	assert.Equal(t, ClassComparison{ClassID: testutil.ClassB, ClassName: "B", Attendance: 0, Students: 1, Participation: 0}, got[1])

	only := CompareClasses(rows, students, snap, testutil.DepYouth, testutil.ActSunday, month(2026, 10), []int64{testutil.ClassB, testutil.ClassC})
	require.Len(t, only, 1)
	assert.Equal(t, "B", only[0].ClassName)
}

func TestStudentCounts(t *testing.T) {
	snap := testutil.Youth().Build()
	got := StudentCounts(join.Attendance(snap), join.Students(snap), testutil.ClassA, testutil.ActSunday, month(2026, 10))

	require.Len(t, got, 2)
	assert.Equal(t, StudentCount{StudentID: testutil.StudentSara, StudentName: "Sara", Count: 1}, got[0])
	assert.Equal(t, StudentCount{StudentID: testutil.StudentMina, StudentName: "Mina", Count: 0}, got[1])
}
