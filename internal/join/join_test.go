package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/testutil"
)

func TestStudents_OneRowPerStudent(t *testing.T) {
	snap := testutil.Youth().Build()

	students := Students(snap)
	require.Len(t, students, 4)

	mina := students[0]
	assert.Equal(t, "Mina", mina.StudentName)
	assert.Equal(t, "A", mina.ClassName)
	assert.Equal(t, "Youth", mina.DepartmentName)
}

func TestStudents_DropsBrokenLinks(t *testing.T) {
	snap := testutil.Youth().
		Class(30, "Orphan", 99).   // department 99 does not exist
		Student(50, "Lost", 30).   // class resolves, department does not
		Student(51, "Ghost", 777). // class does not resolve
		Build()

	students := Students(snap)
	assert.Len(t, students, 4)
	for _, s := range students {
		assert.NotEqual(t, "Lost", s.StudentName)
		assert.NotEqual(t, "Ghost", s.StudentName)
	}
}

func TestAttendance_JoinsSnapshottedClass(t *testing.T) {
	b := testutil.Youth()
	snap := b.Build()

	// Sara moves to class B after her attendance was recorded.
	for i := range snap.Students {
		if snap.Students[i].ID == testutil.StudentSara {
			snap.Students[i].ClassID = testutil.ClassB
		}
	}

	rows := Attendance(snap)
	require.Len(t, rows, len(snap.Attendance))

	for _, r := range rows {
		if r.StudentID == testutil.StudentSara {
			assert.Equal(t, "A", r.ClassName, "history keeps the class at recording time")
		}
	}
}

func TestAttendance_DropsDanglingRows(t *testing.T) {
	snap := testutil.Youth().Build()
	snap.Attendance = append(snap.Attendance,
		model.Attendance{ID: 900, StudentID: 999, ActivityID: testutil.ActSunday, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth},
		model.Attendance{ID: 901, StudentID: testutil.StudentMina, ActivityID: 999, ClassID: testutil.ClassA, DepartmentID: testutil.DepYouth},
		model.Attendance{ID: 902, StudentID: testutil.StudentMina, ActivityID: testutil.ActSunday, ClassID: 999, DepartmentID: testutil.DepYouth},
	)

	rows := Attendance(snap)
	assert.Len(t, rows, len(snap.Attendance)-3)
}

func TestAttendance_EmptySnapshot(t *testing.T) {
	rows := Attendance(&model.Snapshot{})
	assert.Empty(t, rows)
	assert.Empty(t, Students(&model.Snapshot{}))
}

func TestServants_OnlyAssigned(t *testing.T) {
	snap := testutil.Youth().Build()

	servants := Servants(snap)
	require.Len(t, servants, 2)
	assert.Equal(t, "George", servants[0].ServantName)
	assert.Equal(t, "Youth", servants[0].DepartmentName)
	assert.Equal(t, "Youssef", servants[1].ServantName)
}

func TestFilters(t *testing.T) {
	snap := testutil.Youth().Build()
	students := Students(snap)

	assert.Len(t, StudentsInDepartment(students, testutil.DepYouth), 3)
	assert.Len(t, StudentsInClass(students, testutil.ClassA), 2)
	assert.Empty(t, StudentsInClass(students, 12345))

	ids := StudentIDs(StudentsInClass(students, testutil.ClassB))
	rows := AttendanceOf(Attendance(snap), ids)
	assert.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, testutil.StudentPeter, r.StudentID)
	}
}

func TestViewsAreIndependentCopies(t *testing.T) {
	snap := testutil.Youth().Build()
	a := Students(snap)
	b := Students(snap)
	a[0].StudentName = "changed"
	assert.Equal(t, "Mina", b[0].StudentName)
}
