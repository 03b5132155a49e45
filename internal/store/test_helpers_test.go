package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/flock/internal/auth"
)

func init() { auth.Cost = bcrypt.MinCost }

// createTestStore creates a new sqlite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createYouthStore creates a store loaded with testdata/youth.yaml.
func createYouthStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	fx, err := LoadFixture(filepath.Join("testdata", "youth.yaml"))
	if err != nil {
		t.Fatalf("LoadFixture() failed: %v", err)
	}
	if err := s.Import(context.Background(), fx); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	return s
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.Get(&value, fmt.Sprintf("PRAGMA %s", name)); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
