package service

import (
	"context"
	"errors"
	"strings"

	"planner/internal/models"
	"planner/internal/repository"
	"planner/pkg/logger"
)

// Users resolves identity token subjects to user records.
type Users struct {
	store         *repository.Store
	autoProvision bool
}

// NewUsers wires the resolver. With autoProvision an unknown subject gets a
// fresh user record instead of failing.
func NewUsers(store *repository.Store, autoProvision bool) *Users {
	return &Users{store: store, autoProvision: autoProvision}
}

// Resolve maps a token subject to its user.
func (u *Users) Resolve(ctx context.Context, subject, email string) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, models.ErrUnauthenticated
	}
	r := u.store.Repo()
	user, err := r.UserBySubject(ctx, subject)
	if err == nil || !errors.Is(err, models.ErrUserNotFound) || !u.autoProvision {
		return user, err
	}
	user, err = r.EnsureUser(ctx, subject, email)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "User provisioned", "user_id", user.ID)
	return user, nil
}
