package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"planner/internal/models"
)

// UserBySubject looks up the user an identity token subject maps to.
func (r *Repo) UserBySubject(ctx context.Context, subject string) (*models.User, error) {
	defer observeDB(ctx, "users.by_subject")()
	var u models.User
	err := r.get(ctx, &u, `SELECT id, subject, email, created_at FROM users WHERE subject = ?`, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: subject %s", models.ErrUserNotFound, subject)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", subject, err)
	}
	return &u, nil
}

// EnsureUser returns the user for subject, creating it first if needed. A
// concurrent creation of the same subject resolves to the stored row.
func (r *Repo) EnsureUser(ctx context.Context, subject, email string) (*models.User, error) {
	u, err := r.UserBySubject(ctx, subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}
	if err := r.insertUserIfAbsent(ctx, uuid.New().String(), subject, email); err != nil {
		return nil, err
	}
	return r.UserBySubject(ctx, subject)
}

func (r *Repo) insertUserIfAbsent(ctx context.Context, id, subject, email string) error {
	defer observeDB(ctx, "users.insert")()
	if _, err := r.exec(ctx, `INSERT INTO users (id, subject, email, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (subject) DO NOTHING`, id, subject, email, now()); err != nil {
		return fmt.Errorf("creating user %s: %w", subject, err)
	}
	return nil
}
