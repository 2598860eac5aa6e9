// Package service implements the ordering and scheduling operations on top of
// the repository. Every mutation runs in one transaction: ownership and input
// checks come first, then the writes, then a normalization pass over whatever
// sibling group or day the mutation touched.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner/internal/models"
	"planner/internal/ordering"
	"planner/internal/repository"
	"planner/pkg/logger"
)

// Notifier is told about every committed item mutation.
type Notifier interface {
	Notify(ctx context.Context, ev models.ItemEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, models.ItemEvent) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func event(action string, it *models.Item) models.ItemEvent {
	return models.ItemEvent{
		Action:     action,
		ItemID:     it.ID,
		UserID:     it.UserID,
		ParentID:   it.Parent(),
		Date:       it.Date(),
		OccurredAt: time.Now().UTC(),
	}
}

// owned loads an item and checks that userID owns it.
func owned(ctx context.Context, r *repository.Repo, userID, id string) (*models.Item, error) {
	it, err := r.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.UserID != userID {
		return nil, fmt.Errorf("%w: item %s", models.ErrOwnership, id)
	}
	return it, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func mainEntries(items []models.Item) []ordering.Entry {
	out := make([]ordering.Entry, 0, len(items))
	for _, it := range items {
		out = append(out, ordering.Entry{ID: it.ID, Order: it.MainOrder})
	}
	return out
}

func dayEntries(items []models.Item, exclude string) []ordering.Entry {
	out := make([]ordering.Entry, 0, len(items))
	for _, it := range items {
		if it.ID != exclude {
			out = append(out, ordering.Entry{ID: it.ID, Order: it.DayOrder})
		}
	}
	return out
}

func applyMainOrder(ctx context.Context, r *repository.Repo, patches []ordering.Patch, skip string) (int, error) {
	n := 0
	for _, p := range patches {
		if p.ID == skip {
			continue
		}
		order := p.Order
		if err := r.SetMainOrder(ctx, p.ID, &order); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// normalizeSiblings rewrites the active ranks of one sibling group to 1..N.
// Any write it makes means an earlier pass left drift behind.
func normalizeSiblings(ctx context.Context, r *repository.Repo, userID string, parentID *string) error {
	siblings, err := r.ActiveSiblings(ctx, userID, parentID)
	if err != nil {
		return err
	}
	n, err := applyMainOrder(ctx, r, ordering.Normalize(mainEntries(siblings)), "")
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Warn(ctx, "Sibling order repaired", "user_id", userID, "parent_id", strValue(parentID), "writes", n)
	}
	return nil
}

// closeGap shifts the active siblings ranked after removed down by one.
func closeGap(ctx context.Context, r *repository.Repo, userID string, parentID *string, removed int) (int, error) {
	siblings, err := r.ActiveSiblings(ctx, userID, parentID)
	if err != nil {
		return 0, err
	}
	return applyMainOrder(ctx, r, ordering.PlanGapClose(mainEntries(siblings), removed), "")
}

// leaveDay takes itemID off date: the day's sequence drops it and the items
// that remain get dense day ranks in sequence order.
func leaveDay(ctx context.Context, r *repository.Repo, userID, date, itemID string) error {
	day, err := r.Day(ctx, userID, date)
	if err != nil && !isNotFound(err) {
		return err
	}
	tagged, err := r.ItemsOnDate(ctx, userID, date)
	if err != nil {
		return err
	}
	remaining := dayEntries(tagged, itemID)

	var stored []string
	if day != nil {
		stored = day.Items
	}
	seq := ordering.ReconcileDay(stored, remaining)
	if day != nil && !equalSeq(seq, day.Items) {
		day.Items = seq
		if err := r.SaveDayItems(ctx, day); err != nil {
			return err
		}
	}
	return applyDayOrder(ctx, r, ordering.PlanDayOrders(seq, remaining))
}

func applyDayOrder(ctx context.Context, r *repository.Repo, patches []ordering.Patch) error {
	for _, p := range patches {
		if err := r.SetDayOrder(ctx, p.ID, p.Order); err != nil {
			return err
		}
	}
	return nil
}

func equalSeq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
