package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"planner/internal/models"
	"planner/internal/ordering"
	"planner/internal/repository"
	"planner/pkg/logger"
)

// Items implements the item and project operations.
type Items struct {
	store  *repository.Store
	notify Notifier
}

// NewItems wires the item service. A nil notifier drops events.
func NewItems(store *repository.Store, n Notifier) *Items {
	return &Items{store: store, notify: notifierOrNop(n)}
}

// CreateInput describes a new item. Order is the 1-based position to insert at
// among the active siblings; zero or less appends.
type CreateInput struct {
	Text     string
	Order    int
	Type     models.ItemType
	ParentID *string
}

// Create inserts a new active item and returns its id.
func (s *Items) Create(ctx context.Context, userID string, in CreateInput) (string, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", invalid("text must not be empty")
	}
	typ := in.Type
	if typ == "" {
		typ = models.ItemTypeTask
	}
	if !typ.Valid() {
		return "", invalid("unknown item type %q", typ)
	}
	if in.ParentID != nil && *in.ParentID == "" {
		in.ParentID = nil
	}

	it := &models.Item{
		ID:       uuid.New().String(),
		UserID:   userID,
		ParentID: in.ParentID,
		Text:     text,
		Type:     typ,
	}
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		if it.ParentID != nil {
			if _, err := owned(ctx, r, userID, *it.ParentID); err != nil {
				return err
			}
		}
		siblings, err := r.ActiveSiblings(ctx, userID, it.ParentID)
		if err != nil {
			return err
		}

		var patches []ordering.Patch
		pos := len(siblings) + 1
		if in.Order > 0 {
			pos, patches = ordering.PlanMove(mainEntries(siblings), ordering.Entry{ID: it.ID}, in.Order)
		}
		it.MainOrder = &pos
		if err := r.InsertItem(ctx, it); err != nil {
			return err
		}
		if _, err := applyMainOrder(ctx, r, patches, it.ID); err != nil {
			return err
		}
		return normalizeSiblings(ctx, r, userID, it.ParentID)
	})
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "Item created", "item_id", it.ID, "parent_id", it.Parent(), "main_order", *it.MainOrder)
	s.notify.Notify(ctx, event(models.ActionCreated, it))
	return it.ID, nil
}

// Move relocates an active item among its active siblings and returns the
// clamped position it landed on.
func (s *Items) Move(ctx context.Context, userID, id string, desired int) (models.MoveResult, error) {
	var (
		it  *models.Item
		pos int
	)
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		if it.Completed {
			return invalid("item %s is completed and has no position", id)
		}
		siblings, err := r.ActiveSiblings(ctx, userID, it.ParentID)
		if err != nil {
			return err
		}
		var patches []ordering.Patch
		pos, patches = ordering.PlanMove(mainEntries(siblings), ordering.Entry{ID: it.ID, Order: it.MainOrder}, desired)
		if _, err := applyMainOrder(ctx, r, patches, ""); err != nil {
			return err
		}
		return normalizeSiblings(ctx, r, userID, it.ParentID)
	})
	if err != nil {
		return models.MoveResult{}, err
	}
	logger.Debug(ctx, "Item moved", "item_id", id, "desired", desired, "new_order", pos)
	s.notify.Notify(ctx, event(models.ActionMoved, it))
	return models.MoveResult{NewOrder: pos}, nil
}

// ToggleComplete flips completion. Completing drops the rank and closes the
// gap behind it; uncompleting appends the item after the active siblings.
func (s *Items) ToggleComplete(ctx context.Context, userID, id string) (*models.Item, error) {
	var it *models.Item
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		if !it.Completed {
			prior := it.MainOrder
			if err := r.SetCompleted(ctx, id, true, nil); err != nil {
				return err
			}
			if prior != nil {
				if _, err := closeGap(ctx, r, userID, it.ParentID, *prior); err != nil {
					return err
				}
			}
		} else {
			siblings, err := r.ActiveSiblings(ctx, userID, it.ParentID)
			if err != nil {
				return err
			}
			next := ordering.NextOrder(mainEntries(siblings))
			if err := r.SetCompleted(ctx, id, false, &next); err != nil {
				return err
			}
		}
		if err := normalizeSiblings(ctx, r, userID, it.ParentID); err != nil {
			return err
		}
		it, err = r.Item(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	action := models.ActionUncompleted
	if it.Completed {
		action = models.ActionCompleted
	}
	logger.Debug(ctx, "Item completion toggled", "item_id", id, "completed", it.Completed)
	s.notify.Notify(ctx, event(action, it))
	return it, nil
}

// Delete removes a single item that has no children, takes it off its
// calendar day and closes the gap it leaves among its siblings.
func (s *Items) Delete(ctx context.Context, userID, id string) (models.DeleteResult, error) {
	var (
		it  *models.Item
		res models.DeleteResult
	)
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		n, err := r.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return invalid("item %s has %d children; delete it as a project", id, n)
		}
		if date := it.Date(); date != "" {
			if err := leaveDay(ctx, r, userID, date, id); err != nil {
				return err
			}
		}
		if err := r.DeleteItem(ctx, id); err != nil {
			return err
		}
		res, err = repairAfterRemoval(ctx, r, it)
		return err
	})
	if err != nil {
		return models.DeleteResult{}, err
	}
	logger.Debug(ctx, "Item deleted", "item_id", id, "updated", res.UpdatedCount)
	s.notify.Notify(ctx, event(models.ActionDeleted, it))
	return res, nil
}

// repairAfterRemoval closes the gap a removed item leaves in its sibling group
// and normalizes the group.
func repairAfterRemoval(ctx context.Context, r *repository.Repo, it *models.Item) (models.DeleteResult, error) {
	res := models.DeleteResult{DeletedOrder: it.MainOrder}
	if it.MainOrder != nil && !it.Completed {
		n, err := closeGap(ctx, r, it.UserID, it.ParentID, *it.MainOrder)
		if err != nil {
			return res, err
		}
		res.UpdatedCount = n
	}
	return res, normalizeSiblings(ctx, r, it.UserID, it.ParentID)
}

// SetExpanded records whether a project or folder is shown expanded.
func (s *Items) SetExpanded(ctx context.Context, userID, id string, expanded bool) (*models.Item, error) {
	return s.update(ctx, userID, id, func(it *models.Item) error {
		it.Expanded = expanded
		return nil
	})
}

// SetColor sets or, with nil, clears the item colour.
func (s *Items) SetColor(ctx context.Context, userID, id string, color *string) (*models.Item, error) {
	return s.update(ctx, userID, id, func(it *models.Item) error {
		if color != nil && strings.TrimSpace(*color) == "" {
			color = nil
		}
		it.Color = color
		return nil
	})
}

// SetText renames an item.
func (s *Items) SetText(ctx context.Context, userID, id, text string) (*models.Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text must not be empty")
	}
	return s.update(ctx, userID, id, func(it *models.Item) error {
		it.Text = text
		return nil
	})
}

// SetTimeEstimate records how long an item is expected to take.
func (s *Items) SetTimeEstimate(ctx context.Context, userID, id string, hours, minutes int) (*models.Item, error) {
	if hours < 0 || minutes < 0 || minutes >= 60 {
		return nil, invalid("time estimate %dh%dm is out of range", hours, minutes)
	}
	return s.update(ctx, userID, id, func(it *models.Item) error {
		it.TimeEstimateHours = hours
		it.TimeEstimateMinutes = minutes
		return nil
	})
}

func (s *Items) update(ctx context.Context, userID, id string, mutate func(*models.Item) error) (*models.Item, error) {
	var it *models.Item
	err := s.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		if err := mutate(it); err != nil {
			return err
		}
		return r.UpdateItem(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, event(models.ActionUpdated, it))
	return it, nil
}

// ListAll returns every item of the user: active ones by rank, then completed.
func (s *Items) ListAll(ctx context.Context, userID string) ([]models.Item, error) {
	return s.store.Repo().ItemsByUser(ctx, userID)
}

// ListByDateRange returns items assigned to a date within [start, end].
func (s *Items) ListByDateRange(ctx context.Context, userID, start, end string) ([]models.Item, error) {
	if !ordering.ValidDate(start) || !ordering.ValidDate(end) {
		return nil, invalid("dates must be YYYY-MM-DD, got %q and %q", start, end)
	}
	if start > end {
		return nil, invalid("start %s is after end %s", start, end)
	}
	return s.store.Repo().ItemsInRange(ctx, userID, start, end)
}

// ListByDate returns the items assigned to date by day rank.
func (s *Items) ListByDate(ctx context.Context, userID, date string) ([]models.Item, error) {
	if !ordering.ValidDate(date) {
		return nil, invalid("date must be YYYY-MM-DD, got %q", date)
	}
	return s.store.Repo().ItemsOnDate(ctx, userID, date)
}
