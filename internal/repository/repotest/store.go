// Package repotest opens throwaway stores for tests.
package repotest

import (
	"context"
	"testing"

	"planner/internal/database"
	"planner/internal/repository"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// It automatically closes the database when the test completes.
func NewTestStore(t *testing.T) *repository.Store {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite", ":memory:", 1)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return repository.New(db)
}
