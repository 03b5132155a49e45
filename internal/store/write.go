package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/flock/internal/model"
)

type attendanceInsert struct {
	StudentID    int64         `db:"student_id"`
	ActivityID   int64         `db:"activity_id"`
	ClassID      int64         `db:"class_id"`
	DepartmentID int64         `db:"dep_id"`
	Date         string        `db:"attendance_date"`
	RecordedBy   sql.NullInt64 `db:"recorded_by_servant_id"`
}

// InsertAttendance writes rows as one batch inside a transaction: either
// every row is stored or none is. Row ids are assigned by the store.
// An empty batch writes nothing.
func (s *Store) InsertAttendance(ctx context.Context, rows []model.Attendance) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := make([]attendanceInsert, 0, len(rows))
	for _, r := range rows {
		batch = append(batch, attendanceInsert{
			StudentID:    r.StudentID,
			ActivityID:   r.ActivityID,
			ClassID:      r.ClassID,
			DepartmentID: r.DepartmentID,
			Date:         r.Date.Format(model.DateLayout),
			RecordedBy:   sql.NullInt64{Int64: r.RecordedBy, Valid: r.RecordedBy != 0},
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert attendance: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO "Attendance"
		(student_id, activity_id, class_id, dep_id, attendance_date, recorded_by_servant_id)
		VALUES (:student_id, :activity_id, :class_id, :dep_id, :attendance_date, :recorded_by_servant_id)
	`, batch); err != nil {
		return 0, fmt.Errorf("insert attendance: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert attendance: commit: %w", err)
	}
	return len(batch), nil
}

// InsertActivity creates an activity and returns its id. An empty type is
// stored as NULL.
func (s *Store) InsertActivity(ctx context.Context, name string, typ model.ActivityType) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO "Activity" (activity_name, activity_type)
		VALUES (?, ?)
		RETURNING activity_id
	`), name, sql.NullString{String: string(typ), Valid: typ != ""}).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert activity %q: %w", name, classify(err))
	}
	return id, nil
}

// DeleteActivity removes an activity by id. Deleting an activity that has
// attendance fails with ErrReference; deleting a missing id is not an error.
func (s *Store) DeleteActivity(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM "Activity" WHERE activity_id = ?`), id); err != nil {
		return fmt.Errorf("delete activity %d: %w", id, classify(err))
	}
	return nil
}
