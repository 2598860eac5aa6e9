package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"planner/internal/metrics"
)

// Store owns the connection pool and hands out repositories bound either to
// the pool or to a transaction.
type Store struct {
	db *sqlx.DB
}

// New wraps an open pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Repo reads and writes users, items and calendar days through one executor.
type Repo struct {
	ext sqlx.ExtContext
}

// Repo returns a repository running outside any transaction.
func (s *Store) Repo() *Repo {
	return &Repo{ext: s.db}
}

// InTx runs fn inside one transaction, committing when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(r *Repo) error) error {
	done := observeDB(ctx, "db.tx")
	defer done()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Repo{ext: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Ping verifies that the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	defer observeDB(ctx, "db.ping")()
	return s.db.PingContext(ctx)
}

func (r *Repo) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
}

func (r *Repo) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, r.ext, dest, r.ext.Rebind(query), args...)
}

func (r *Repo) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveDBLatency(ctx, operation, start)
	}
}

func now() time.Time {
	return time.Now().UTC()
}
