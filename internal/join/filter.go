package join

// StudentsInDepartment keeps the students of one department.
func StudentsInDepartment(students []StudentFull, depID int64) []StudentFull {
	return filterStudents(students, func(s StudentFull) bool { return s.DepartmentID == depID })
}

// StudentsInClass keeps the students of one class.
func StudentsInClass(students []StudentFull, classID int64) []StudentFull {
	return filterStudents(students, func(s StudentFull) bool { return s.ClassID == classID })
}

// StudentIDs returns the set of ids in a population.
func StudentIDs(students []StudentFull) map[int64]bool {
	ids := make(map[int64]bool, len(students))
	for _, s := range students {
		ids[s.StudentID] = true
	}
	return ids
}

// AttendanceOf keeps attendance rows of students in ids.
func AttendanceOf(rows []AttendanceFull, ids map[int64]bool) []AttendanceFull {
	return FilterAttendance(rows, func(a AttendanceFull) bool { return ids[a.StudentID] })
}

// FilterAttendance returns a new slice of the rows matching keep.
func FilterAttendance(rows []AttendanceFull, keep func(AttendanceFull) bool) []AttendanceFull {
	var out []AttendanceFull
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func filterStudents(students []StudentFull, keep func(StudentFull) bool) []StudentFull {
	var out []StudentFull
	for _, s := range students {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
