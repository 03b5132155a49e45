// Package session ties an authenticated servant to a loaded snapshot and
// the settings they analyse it with.
//
// A Session never patches its snapshot. Every successful write is followed
// by a full reload from the store, so what the session shows is always what
// the store holds.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/roach88/flock/internal/auth"
	"github.com/roach88/flock/internal/join"
	"github.com/roach88/flock/internal/model"
	"github.com/roach88/flock/internal/scope"
	"github.com/roach88/flock/internal/settings"
)

// ErrInvalid is returned when a write is rejected before reaching the store.
var ErrInvalid = errors.New("invalid input")

// Backend is the store a session reads from and delegates writes to.
type Backend interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
	InsertAttendance(ctx context.Context, rows []model.Attendance) (int, error)
	InsertActivity(ctx context.Context, name string, typ model.ActivityType) (int64, error)
	DeleteActivity(ctx context.Context, id int64) error
}

// Login is the name and secret a servant signs in with.
type Login struct {
	Name   string
	Secret string
}

// Options configure a session. Zero values fall back to defaults.
type Options struct {
	Settings *settings.Settings
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Session is one servant's working state.
type Session struct {
	ID       string
	Identity scope.Identity
	Settings *settings.Settings

	backend Backend
	logger  *slog.Logger
	clock   func() time.Time

	snap     *model.Snapshot
	students []join.StudentFull
	visible  []join.StudentFull
	rows     []join.AttendanceFull
}

// Open loads the snapshot, authenticates login against it, and returns a
// session scoped to that servant. The settings are cloned so changes stay
// within this session.
func Open(ctx context.Context, backend Backend, login Login, opts Options) (*Session, error) {
	s := &Session{
		ID:       uuid.NewString(),
		Settings: opts.Settings,
		backend:  backend,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}
	if s.Settings == nil {
		s.Settings = settings.Default()
	}
	s.Settings = s.Settings.Clone()
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	s.logger = s.logger.With("session", s.ID)

	snap, err := backend.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	id, err := auth.Authenticate(snap, login.Name, login.Secret)
	if err != nil {
		s.logger.Warn("login rejected", "name", login.Name, "error", err)
		return nil, fmt.Errorf("open session: %w", err)
	}
	s.Identity = id
	s.logger = s.logger.With("servant", id.ServantID, "role", id.Role)
	s.install(snap)

	s.logger.Info("session opened", "visible_students", len(s.visible))
	return s, nil
}

// Reload replaces the snapshot with a fresh copy from the store.
func (s *Session) Reload(ctx context.Context) error {
	snap, err := s.backend.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	s.install(snap)
	s.logger.Debug("snapshot reloaded",
		"students", len(snap.Students),
		"attendance", len(snap.Attendance),
	)
	return nil
}

func (s *Session) install(snap *model.Snapshot) {
	s.snap = snap
	s.students = join.Students(snap)
	s.rows = join.Attendance(snap)
	s.visible = scope.Visible(snap, s.students, s.Identity)
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *Session) Snapshot() *model.Snapshot { return s.snap }

// Students returns every joined student, regardless of visibility.
func (s *Session) Students() []join.StudentFull { return s.students }

// Visible returns the students this session may see.
func (s *Session) Visible() []join.StudentFull { return s.visible }

// Attendance returns every joined attendance row.
func (s *Session) Attendance() []join.AttendanceFull { return s.rows }

// Now returns the session's notion of the current instant.
func (s *Session) Now() time.Time { return s.clock() }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Population returns the visible students, narrowed to one department when
// department is not empty.
func (s *Session) Population(department string) ([]join.StudentFull, error) {
	if department == "" {
		return s.visible, nil
	}
	d, ok := s.snap.DepartmentByName(department)
	if !ok {
		return nil, fmt.Errorf("%w: unknown department %q", ErrInvalid, department)
	}
	return join.StudentsInDepartment(s.visible, d.ID), nil
}

// Entry is one attendance submission for the servant's class.
type Entry struct {
	ActivityID int64     `validate:"required,gt=0"`
	Date       time.Time `validate:"required"`
	StudentIDs []int64   `validate:"dive,gt=0"`
}

var validate = validator.New()

// RecordAttendance stores one row per present student. Only a servant
// assigned to a class may record, and only for students currently in that
// class. Each row captures the student's class and department at this
// moment. An empty selection records nothing and is not an error.
func (s *Session) RecordAttendance(ctx context.Context, e Entry) (int, error) {
	classID, err := scope.CanEnterAttendance(s.snap, s.Identity)
	if err != nil {
		return 0, fmt.Errorf("record attendance: %w", err)
	}
	if err := validate.Struct(e); err != nil {
		return 0, fmt.Errorf("record attendance: %w: %v", ErrInvalid, err)
	}
	if len(e.StudentIDs) == 0 {
		s.logger.Info("attendance entry empty, nothing recorded")
		return 0, nil
	}
	if _, ok := s.snap.ActivityByID(e.ActivityID); !ok {
		return 0, fmt.Errorf("record attendance: %w: unknown activity %d", ErrInvalid, e.ActivityID)
	}

	class := make(map[int64]join.StudentFull)
	for _, st := range join.StudentsInClass(s.students, classID) {
		class[st.StudentID] = st
	}

	seen := make(map[int64]bool, len(e.StudentIDs))
	rows := make([]model.Attendance, 0, len(e.StudentIDs))
	for _, id := range e.StudentIDs {
		st, ok := class[id]
		if !ok {
			return 0, fmt.Errorf("record attendance: %w: student %d is not in your class", scope.ErrForbidden, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, model.Attendance{
			StudentID:    st.StudentID,
			ActivityID:   e.ActivityID,
			ClassID:      st.ClassID,
			DepartmentID: st.DepartmentID,
			Date:         model.Truncate(e.Date),
			RecordedBy:   s.Identity.ServantID,
		})
	}

	n, err := s.backend.InsertAttendance(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("record attendance: %w", err)
	}
	s.logger.Info("attendance recorded", "activity", e.ActivityID, "date", e.Date.Format(model.DateLayout), "count", n)
	return n, s.Reload(ctx)
}

// AddActivity creates an activity. Names are trimmed; blank names and names
// already in use (ignoring case) are rejected.
func (s *Session) AddActivity(ctx context.Context, name string, typ model.ActivityType) (int64, error) {
	if err := scope.CanManageActivities(s.Identity); err != nil {
		return 0, fmt.Errorf("add activity: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("add activity: %w: name is required", ErrInvalid)
	}
	for _, a := range s.snap.Activities {
		if strings.EqualFold(a.Name, name) {
			return 0, fmt.Errorf("add activity: %w: %q already exists", ErrInvalid, a.Name)
		}
	}

	id, err := s.backend.InsertActivity(ctx, name, typ)
	if err != nil {
		return 0, fmt.Errorf("add activity: %w", err)
	}
	s.logger.Info("activity added", "activity", id, "name", name, "type", typ)
	return id, s.Reload(ctx)
}

// DeleteActivity removes an activity by name.
func (s *Session) DeleteActivity(ctx context.Context, name string) error {
	if err := scope.CanManageActivities(s.Identity); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	a, ok := s.snap.ActivityByName(strings.TrimSpace(name))
	if !ok {
		return fmt.Errorf("delete activity: %w: unknown activity %q", ErrInvalid, name)
	}
	if err := s.backend.DeleteActivity(ctx, a.ID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	s.logger.Info("activity deleted", "activity", a.ID, "name", a.Name)
	return s.Reload(ctx)
}
