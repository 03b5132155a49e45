package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/flock/internal/model"
)

// Optional columns whose presence decides what the snapshot supports.
const (
	columnActivityType = "activity_type"
	columnCredential   = "password"
)

type departmentRow struct {
	ID        int64         `db:"dep_id"`
	Name      string        `db:"dep_name"`
	ManagerID sql.NullInt64 `db:"manager_id"`
}

type classRow struct {
	ID           int64  `db:"class_id"`
	Name         string `db:"class_name"`
	DepartmentID int64  `db:"dep_id"`
}

type studentRow struct {
	ID      int64  `db:"student_id"`
	Name    string `db:"student_name"`
	ClassID int64  `db:"class_id"`
}

type servantRow struct {
	ID       int64          `db:"servant_id"`
	Name     string         `db:"servant_name"`
	Role     string         `db:"role"`
	ClassID  sql.NullInt64  `db:"class_id"`
	Password sql.NullString `db:"password"`
}

type activityRow struct {
	ID   int64          `db:"activity_id"`
	Name string         `db:"activity_name"`
	Type sql.NullString `db:"activity_type"`
}

type attendanceRow struct {
	ID           int64         `db:"attendance_id"`
	StudentID    int64         `db:"student_id"`
	ActivityID   int64         `db:"activity_id"`
	ClassID      int64         `db:"class_id"`
	DepartmentID int64         `db:"dep_id"`
	Date         dbDate        `db:"attendance_date"`
	RecordedBy   sql.NullInt64 `db:"recorded_by_servant_id"`
}

// dbDate scans DATE columns from either driver: pgx yields time.Time,
// SQLite may yield time.Time or text depending on how the row was written.
type dbDate struct {
	time.Time
}

func (d *dbDate) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		d.Time = model.Truncate(x)
		return nil
	case string:
		t, err := model.ParseDate(x)
		d.Time = t
		return err
	case []byte:
		t, err := model.ParseDate(string(x))
		d.Time = t
		return err
	}
	return fmt.Errorf("cannot scan %T into a date", v)
}

// LoadSnapshot reads all six tables in full.
//
// The Activity and Servant tables are read with SELECT * so that stores
// lacking the activity_type or password column still load; the snapshot's
// Schema records which of them were present.
func (s *Store) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	// Hosted tables may carry columns flock does not know about.
	db := s.db.Unsafe()

	deps, _, err := selectAll[departmentRow](ctx, db, "Department", "dep_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, r := range deps {
		d := model.Department{ID: r.ID, Name: r.Name}
		if r.ManagerID.Valid {
			id := r.ManagerID.Int64
			d.ManagerID = &id
		}
		snap.Departments = append(snap.Departments, d)
	}

	classes, _, err := selectAll[classRow](ctx, db, "Class", "class_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, r := range classes {
		snap.Classes = append(snap.Classes, model.Class{ID: r.ID, Name: r.Name, DepartmentID: r.DepartmentID})
	}

	students, _, err := selectAll[studentRow](ctx, db, "Student", "student_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, r := range students {
		snap.Students = append(snap.Students, model.Student{ID: r.ID, Name: r.Name, ClassID: r.ClassID})
	}

	servants, cols, err := selectAll[servantRow](ctx, db, "Servant", "servant_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap.Schema.HasCredential = cols[columnCredential]
	for _, r := range servants {
		role, err := model.ParseRole(r.Role)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: servant %d: %w", r.ID, err)
		}
		sv := model.Servant{ID: r.ID, Name: r.Name, Role: role, Credential: r.Password.String}
		if r.ClassID.Valid {
			id := r.ClassID.Int64
			sv.ClassID = &id
		}
		snap.Servants = append(snap.Servants, sv)
	}

	activities, cols, err := selectAll[activityRow](ctx, db, "Activity", "activity_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap.Schema.HasActivityType = cols[columnActivityType]
	for _, r := range activities {
		typ, err := model.ParseActivityType(r.Type.String)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: activity %d: %w", r.ID, err)
		}
		snap.Activities = append(snap.Activities, model.Activity{ID: r.ID, Name: r.Name, Type: typ})
	}

	attendance, _, err := selectAll[attendanceRow](ctx, db, "Attendance", "attendance_id")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	for _, r := range attendance {
		snap.Attendance = append(snap.Attendance, model.Attendance{
			ID:           r.ID,
			StudentID:    r.StudentID,
			ActivityID:   r.ActivityID,
			ClassID:      r.ClassID,
			DepartmentID: r.DepartmentID,
			Date:         r.Date.Time,
			RecordedBy:   r.RecordedBy.Int64,
		})
	}

	return snap, nil
}

// selectAll reads a whole table ordered by its key and reports which
// columns the result set had.
func selectAll[T any](ctx context.Context, db *sqlx.DB, table, key string) ([]T, map[string]bool, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %q ORDER BY %s ASC`, table, key))
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}

	out := []T{}
	for rows.Next() {
		var r T
		if err := rows.StructScan(&r); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, cols, nil
}
