package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"planner/internal/models"
)

const itemColumns = `id, user_id, parent_id, text, completed, main_order, type, assigned_date, day_order,
	expanded, color, time_estimate_hours, time_estimate_minutes, created_at, updated_at`

// Active items first by rank, then completed ones; creation time breaks ties.
const listOrder = ` ORDER BY completed, (main_order IS NULL), main_order, created_at, id`

// Day order with unranked items last.
const dayOrder = ` ORDER BY (day_order IS NULL), day_order, created_at, id`

// Item loads one item by id regardless of owner.
func (r *Repo) Item(ctx context.Context, id string) (*models.Item, error) {
	defer observeDB(ctx, "items.get")()
	var it models.Item
	err := r.get(ctx, &it, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return &it, nil
}

// InsertItem stores a new item, generating its id and timestamps when unset.
func (r *Repo) InsertItem(ctx context.Context, it *models.Item) error {
	defer observeDB(ctx, "items.insert")()
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if it.Type == "" {
		it.Type = models.ItemTypeTask
	}
	ts := now()
	it.CreatedAt = ts
	it.UpdatedAt = ts
	_, err := r.exec(ctx, `INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.UserID, it.ParentID, it.Text, it.Completed, it.MainOrder, string(it.Type),
		it.AssignedDate, it.DayOrder, it.Expanded, it.Color, it.TimeEstimateHours, it.TimeEstimateMinutes,
		it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// UpdateItem writes the editable attributes of an item. Ordering and schedule
// columns have their own setters so rank patches stay minimal.
func (r *Repo) UpdateItem(ctx context.Context, it *models.Item) error {
	defer observeDB(ctx, "items.update")()
	it.UpdatedAt = now()
	n, err := r.exec(ctx, `UPDATE items SET text = ?, type = ?, expanded = ?, color = ?,
		time_estimate_hours = ?, time_estimate_minutes = ?, updated_at = ? WHERE id = ?`,
		it.Text, string(it.Type), it.Expanded, it.Color,
		it.TimeEstimateHours, it.TimeEstimateMinutes, it.UpdatedAt, it.ID)
	if err != nil {
		return fmt.Errorf("updating item %s: %w", it.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: item %s", models.ErrNotFound, it.ID)
	}
	return nil
}

// SetMainOrder writes one rank; nil clears it.
func (r *Repo) SetMainOrder(ctx context.Context, id string, order *int) error {
	defer observeDB(ctx, "items.set_main_order")()
	if _, err := r.exec(ctx, `UPDATE items SET main_order = ?, updated_at = ? WHERE id = ?`, order, now(), id); err != nil {
		return fmt.Errorf("setting main_order of %s: %w", id, err)
	}
	return nil
}

// SetCompleted flips completion together with the rank it implies.
func (r *Repo) SetCompleted(ctx context.Context, id string, completed bool, order *int) error {
	defer observeDB(ctx, "items.set_completed")()
	if _, err := r.exec(ctx, `UPDATE items SET completed = ?, main_order = ?, updated_at = ? WHERE id = ?`,
		completed, order, now(), id); err != nil {
		return fmt.Errorf("setting completed of %s: %w", id, err)
	}
	return nil
}

// SetSchedule writes the assigned date and day rank; nil values clear them.
func (r *Repo) SetSchedule(ctx context.Context, id string, date *string, order *int) error {
	defer observeDB(ctx, "items.set_schedule")()
	if _, err := r.exec(ctx, `UPDATE items SET assigned_date = ?, day_order = ?, updated_at = ? WHERE id = ?`,
		date, order, now(), id); err != nil {
		return fmt.Errorf("setting schedule of %s: %w", id, err)
	}
	return nil
}

// SetDayOrder writes one day rank.
func (r *Repo) SetDayOrder(ctx context.Context, id string, order int) error {
	defer observeDB(ctx, "items.set_day_order")()
	if _, err := r.exec(ctx, `UPDATE items SET day_order = ?, updated_at = ? WHERE id = ?`, order, now(), id); err != nil {
		return fmt.Errorf("setting day_order of %s: %w", id, err)
	}
	return nil
}

// DeleteItem removes one item row.
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	defer observeDB(ctx, "items.delete")()
	if _, err := r.exec(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// ActiveSiblings returns the active items of a sibling group by rank.
// A nil parentID selects the top level.
func (r *Repo) ActiveSiblings(ctx context.Context, userID string, parentID *string) ([]models.Item, error) {
	defer observeDB(ctx, "items.active_siblings")()
	q := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ? AND completed = ? AND `
	args := []interface{}{userID, false}
	if parentID == nil {
		q += `parent_id IS NULL`
	} else {
		q += `parent_id = ?`
		args = append(args, *parentID)
	}
	var items []models.Item
	if err := r.selectAll(ctx, &items, q+listOrder, args...); err != nil {
		return nil, fmt.Errorf("listing siblings: %w", err)
	}
	return items, nil
}

// Children returns every direct child of parentID, across owners.
func (r *Repo) Children(ctx context.Context, parentID string) ([]models.Item, error) {
	defer observeDB(ctx, "items.children")()
	var items []models.Item
	if err := r.selectAll(ctx, &items, `SELECT `+itemColumns+` FROM items WHERE parent_id = ?`+listOrder, parentID); err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", parentID, err)
	}
	return items, nil
}

// CountChildren counts direct children of parentID.
func (r *Repo) CountChildren(ctx context.Context, parentID string) (int, error) {
	defer observeDB(ctx, "items.count_children")()
	var n int
	if err := r.get(ctx, &n, `SELECT COUNT(*) FROM items WHERE parent_id = ?`, parentID); err != nil {
		return 0, fmt.Errorf("counting children of %s: %w", parentID, err)
	}
	return n, nil
}

// UserChildren returns one user's children of parentID in list order.
func (r *Repo) UserChildren(ctx context.Context, userID, parentID string) ([]models.Item, error) {
	defer observeDB(ctx, "items.user_children")()
	var items []models.Item
	err := r.selectAll(ctx, &items,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND parent_id = ?`+listOrder, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", parentID, err)
	}
	return items, nil
}

// ItemsByUser returns all of a user's items in list order.
func (r *Repo) ItemsByUser(ctx context.Context, userID string) ([]models.Item, error) {
	defer observeDB(ctx, "items.by_user")()
	var items []models.Item
	if err := r.selectAll(ctx, &items, `SELECT `+itemColumns+` FROM items WHERE user_id = ?`+listOrder, userID); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// ItemsOnDate returns a user's items assigned to date by day rank.
func (r *Repo) ItemsOnDate(ctx context.Context, userID, date string) ([]models.Item, error) {
	defer observeDB(ctx, "items.on_date")()
	var items []models.Item
	err := r.selectAll(ctx, &items,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND assigned_date = ?`+dayOrder, userID, date)
	if err != nil {
		return nil, fmt.Errorf("listing items on %s: %w", date, err)
	}
	return items, nil
}

// ItemsInRange returns a user's items assigned within [start, end].
func (r *Repo) ItemsInRange(ctx context.Context, userID, start, end string) ([]models.Item, error) {
	defer observeDB(ctx, "items.in_range")()
	var items []models.Item
	err := r.selectAll(ctx, &items, `SELECT `+itemColumns+` FROM items
		WHERE user_id = ? AND assigned_date >= ? AND assigned_date <= ?
		ORDER BY assigned_date, (day_order IS NULL), day_order, created_at, id`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing items from %s to %s: %w", start, end, err)
	}
	return items, nil
}

// ItemsByIDs returns the user's items among ids, in no particular order.
func (r *Repo) ItemsByIDs(ctx context.Context, userID string, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defer observeDB(ctx, "items.by_ids")()
	q, args, err := sqlx.In(`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("building id query: %w", err)
	}
	var items []models.Item
	if err := r.selectAll(ctx, &items, q, args...); err != nil {
		return nil, fmt.Errorf("listing items by id: %w", err)
	}
	return items, nil
}
