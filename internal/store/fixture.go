package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flock/internal/auth"
	"github.com/roach88/flock/internal/model"
)

// Fixture is a whole dataset in YAML form, used to bootstrap a local
// database. Servant passwords are given in clear and hashed on import.
type Fixture struct {
	Departments []FixtureDepartment `yaml:"departments" validate:"dive"`
	Classes     []FixtureClass      `yaml:"classes" validate:"dive"`
	Students    []FixtureStudent    `yaml:"students" validate:"dive"`
	Servants    []FixtureServant    `yaml:"servants" validate:"dive"`
	Activities  []FixtureActivity   `yaml:"activities" validate:"dive"`
	Attendance  []FixtureAttendance `yaml:"attendance" validate:"dive"`
}

type FixtureDepartment struct {
	ID      int64  `yaml:"id" validate:"required,gt=0"`
	Name    string `yaml:"name" validate:"required"`
	Manager int64  `yaml:"manager" validate:"gte=0"`
}

type FixtureClass struct {
	ID         int64  `yaml:"id" validate:"required,gt=0"`
	Name       string `yaml:"name" validate:"required"`
	Department int64  `yaml:"department" validate:"required,gt=0"`
}

type FixtureStudent struct {
	ID    int64  `yaml:"id" validate:"required,gt=0"`
	Name  string `yaml:"name" validate:"required"`
	Class int64  `yaml:"class" validate:"required,gt=0"`
}

type FixtureServant struct {
	ID       int64  `yaml:"id" validate:"required,gt=0"`
	Name     string `yaml:"name" validate:"required"`
	Role     string `yaml:"role" validate:"required,oneof='Chief Manager' 'Priest' 'Department Manager' 'Servant'"`
	Class    int64  `yaml:"class" validate:"gte=0"`
	Password string `yaml:"password"`
}

type FixtureActivity struct {
	ID   int64  `yaml:"id" validate:"required,gt=0"`
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"omitempty,oneof=Core Selective"`
}

// FixtureAttendance takes its class and department from the student's
// class in the same fixture.
type FixtureAttendance struct {
	Student    int64  `yaml:"student" validate:"required,gt=0"`
	Activity   int64  `yaml:"activity" validate:"required,gt=0"`
	Date       string `yaml:"date" validate:"required"`
	RecordedBy int64  `yaml:"recorded_by" validate:"gte=0"`
}

var validate = validator.New()

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load fixture: %w", err)
	}
	defer f.Close()

	fx, err := ParseFixture(f)
	if err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return fx, nil
}

// ParseFixture decodes a fixture strictly: unknown keys are errors.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(&fx); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &fx, nil
}

// Import writes a fixture in one transaction, parents before children.
// It fails without writing anything if any row is rejected.
func (s *Store) Import(ctx context.Context, fx *Fixture) error {
	classDep := make(map[int64]int64, len(fx.Classes))
	for _, c := range fx.Classes {
		classDep[c.ID] = c.Department
	}
	studentClass := make(map[int64]int64, len(fx.Students))
	for _, st := range fx.Students {
		studentClass[st.ID] = st.Class
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	exec := func(what, q string, args ...any) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
			return fmt.Errorf("import %s: %w", what, classify(err))
		}
		return nil
	}

	for _, d := range fx.Departments {
		if err := exec("department "+d.Name,
			`INSERT INTO "Department" (dep_id, dep_name, manager_id) VALUES (?, ?, ?)`,
			d.ID, d.Name, nullID(d.Manager)); err != nil {
			return err
		}
	}
	for _, c := range fx.Classes {
		if err := exec("class "+c.Name,
			`INSERT INTO "Class" (class_id, class_name, dep_id) VALUES (?, ?, ?)`,
			c.ID, c.Name, c.Department); err != nil {
			return err
		}
	}
	for _, st := range fx.Students {
		if err := exec("student "+st.Name,
			`INSERT INTO "Student" (student_id, student_name, class_id) VALUES (?, ?, ?)`,
			st.ID, st.Name, st.Class); err != nil {
			return err
		}
	}
	if err := importServants(exec, fx.Servants); err != nil {
		return err
	}
	for _, a := range fx.Activities {
		typ, err := model.ParseActivityType(a.Type)
		if err != nil {
			return fmt.Errorf("import activity %s: %w", a.Name, err)
		}
		if err := exec("activity "+a.Name,
			`INSERT INTO "Activity" (activity_id, activity_name, activity_type) VALUES (?, ?, ?)`,
			a.ID, a.Name, sql.NullString{String: string(typ), Valid: typ != ""}); err != nil {
			return err
		}
	}
	for i, a := range fx.Attendance {
		date, err := model.ParseDate(a.Date)
		if err != nil {
			return fmt.Errorf("import attendance %d: %w", i, err)
		}
		classID, ok := studentClass[a.Student]
		if !ok {
			return fmt.Errorf("import attendance %d: unknown student %d", i, a.Student)
		}
		if err := exec(fmt.Sprintf("attendance %d", i),
			`INSERT INTO "Attendance"
			(student_id, activity_id, class_id, dep_id, attendance_date, recorded_by_servant_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.Student, a.Activity, classID, classDep[classID], date.Format(model.DateLayout), nullID(a.RecordedBy)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: commit: %w", err)
	}
	return nil
}

func importServants(exec func(what, q string, args ...any) error, servants []FixtureServant) error {
	for _, sv := range servants {
		password := sql.NullString{}
		if sv.Password != "" {
			h, err := auth.HashCredential(sv.Password)
			if err != nil {
				return fmt.Errorf("import servant %s: %w", sv.Name, err)
			}
			password = sql.NullString{String: h, Valid: true}
		}
		if err := exec("servant "+sv.Name,
			`INSERT INTO "Servant" (servant_id, servant_name, role, class_id, password) VALUES (?, ?, ?, ?, ?)`,
			sv.ID, sv.Name, sv.Role, nullID(sv.Class), password); err != nil {
			return err
		}
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
