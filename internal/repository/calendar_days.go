package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"planner/internal/models"
)

// Day loads the calendar day for (userID, date).
func (r *Repo) Day(ctx context.Context, userID, date string) (*models.CalendarDay, error) {
	defer observeDB(ctx, "calendar_days.get")()
	var d models.CalendarDay
	err := r.get(ctx, &d, `SELECT id, user_id, date, items, created_at, updated_at
		FROM calendar_days WHERE user_id = ? AND date = ?`, userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: calendar day %s", models.ErrNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("getting calendar day %s: %w", date, err)
	}
	return &d, nil
}

// EnsureDay returns the calendar day for (userID, date), creating an empty one
// the first time the date is used. Concurrent first uses of a date share the
// row that wins the unique (user_id, date) constraint.
func (r *Repo) EnsureDay(ctx context.Context, userID, date string) (*models.CalendarDay, error) {
	d, err := r.Day(ctx, userID, date)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if err := r.insertDayIfAbsent(ctx, uuid.New().String(), userID, date); err != nil {
		return nil, err
	}
	return r.Day(ctx, userID, date)
}

func (r *Repo) insertDayIfAbsent(ctx context.Context, id, userID, date string) error {
	defer observeDB(ctx, "calendar_days.insert")()
	ts := now()
	if _, err := r.exec(ctx, `INSERT INTO calendar_days (id, user_id, date, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (user_id, date) DO NOTHING`,
		id, userID, date, models.DayItems{}, ts, ts); err != nil {
		return fmt.Errorf("creating calendar day %s: %w", date, err)
	}
	return nil
}

// SaveDayItems replaces the ordered item sequence of a day.
func (r *Repo) SaveDayItems(ctx context.Context, d *models.CalendarDay) error {
	defer observeDB(ctx, "calendar_days.save_items")()
	d.UpdatedAt = now()
	if d.Items == nil {
		d.Items = models.DayItems{}
	}
	if _, err := r.exec(ctx, `UPDATE calendar_days SET items = ?, updated_at = ? WHERE id = ?`,
		d.Items, d.UpdatedAt, d.ID); err != nil {
		return fmt.Errorf("saving calendar day %s: %w", d.Date, err)
	}
	return nil
}
