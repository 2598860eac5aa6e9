package service

import (
	"context"

	"planner/internal/models"
	"planner/internal/ordering"
	"planner/internal/repository"
	"planner/pkg/logger"
)

// Calendar places items on days. Each write saves the CalendarDay sequence
// and the items' dayOrder together, so both views list a day the same way.
type Calendar struct {
	store  *repository.Store
	notify Notifier
}

// NewCalendar wires the calendar service. A nil notifier drops events.
func NewCalendar(store *repository.Store, n Notifier) *Calendar {
	return &Calendar{store: store, notify: notifierOrNop(n)}
}

// Get returns the day and its items in sequence order. Without a stored day
// it falls back to the items tagged with the date, ordered by day rank.
func (c *Calendar) Get(ctx context.Context, userID, date string) (*models.DayView, error) {
	if !ordering.ValidDate(date) {
		return nil, invalid("date must be YYYY-MM-DD, got %q", date)
	}
	r := c.store.Repo()
	day, err := r.Day(ctx, userID, date)
	if isNotFound(err) {
		items, err := r.ItemsOnDate(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		return &models.DayView{Items: nonNil(items)}, nil
	}
	if err != nil {
		return nil, err
	}

	found, err := r.ItemsByIDs(ctx, userID, day.Items)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	items := make([]models.Item, 0, len(day.Items))
	for _, id := range day.Items {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return &models.DayView{Day: day, Items: items}, nil
}

// AssignToDate puts an item on the date encoded in token, before the item whose
// id follows the date or at the end of the day.
func (c *Calendar) AssignToDate(ctx context.Context, userID, id, token string) (*models.Item, error) {
	date, beforeID, err := ordering.ParseDateToken(token)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return c.place(ctx, userID, id, date, func(seq []string, _ []ordering.Entry, _ bool) placement {
		seq = ordering.InsertBefore(seq, id, beforeID)
		return placement{rank: indexOf(seq, id) + 1, seq: seq}
	})
}

// AssignToDateAtPosition puts an item on date at day rank target. Every other
// item on that date ranked at or after target moves up by one. Within the
// item's current date the ranks are shifted as they are, gaps included; an
// item arriving from another date lands on a day renumbered 1..M, with target
// clamped to [1, M+1].
func (c *Calendar) AssignToDateAtPosition(ctx context.Context, userID, id, date string, target int) (*models.Item, error) {
	if !ordering.ValidDate(date) {
		return nil, invalid("date must be YYYY-MM-DD, got %q", date)
	}
	return c.place(ctx, userID, id, date, func(seq []string, others []ordering.Entry, sameDay bool) placement {
		if sameDay {
			rank, shifted, seq := ordering.PlanDayShift(others, id, target)
			return placement{rank: rank, seq: seq, shifted: shifted, explicit: true}
		}
		rank, seq := ordering.InsertAt(seq, id, target)
		return placement{rank: rank, seq: seq}
	})
}

// placement is where an assignment puts the item. Unless explicit is set the
// day's ranks are re-derived 1..M from seq; otherwise only shifted is written.
type placement struct {
	rank     int
	seq      []string
	shifted  []ordering.Patch
	explicit bool
}

// place runs one assignment: leave the previous date, reconcile the target
// day, let insert position the item, then persist sequence and ranks.
func (c *Calendar) place(ctx context.Context, userID, id, date string, insert func(seq []string, others []ordering.Entry, sameDay bool) placement) (*models.Item, error) {
	var it *models.Item
	err := c.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		if prev := it.Date(); prev != "" && prev != date {
			if err := leaveDay(ctx, r, userID, prev, id); err != nil {
				return err
			}
		}

		day, err := r.EnsureDay(ctx, userID, date)
		if err != nil {
			return err
		}
		tagged, err := r.ItemsOnDate(ctx, userID, date)
		if err != nil {
			return err
		}
		others := dayEntries(tagged, id)
		p := insert(ordering.ReconcileDay(day.Items, others), others, it.Date() == date)

		day.Items = p.seq
		if err := r.SaveDayItems(ctx, day); err != nil {
			return err
		}
		if err := r.SetSchedule(ctx, id, &date, &p.rank); err != nil {
			return err
		}
		patches := p.shifted
		if !p.explicit {
			current := append(others, ordering.Entry{ID: id, Order: &p.rank})
			patches = ordering.PlanDayOrders(p.seq, current)
		}
		if err := applyDayOrder(ctx, r, patches); err != nil {
			return err
		}
		it, err = r.Item(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "Item assigned to date", "item_id", id, "date", date, "day_order", intValue(it.DayOrder))
	c.notify.Notify(ctx, event(models.ActionAssigned, it))
	return it, nil
}

// Unassign takes an item off its date. Unscheduled items are returned as is.
func (c *Calendar) Unassign(ctx context.Context, userID, id string) (*models.Item, error) {
	var (
		it   *models.Item
		prev string
	)
	err := c.store.InTx(ctx, func(r *repository.Repo) error {
		var err error
		if it, err = owned(ctx, r, userID, id); err != nil {
			return err
		}
		prev = it.Date()
		if prev == "" {
			return nil
		}
		if err := leaveDay(ctx, r, userID, prev, id); err != nil {
			return err
		}
		if err := r.SetSchedule(ctx, id, nil, nil); err != nil {
			return err
		}
		it, err = r.Item(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if prev != "" {
		ev := event(models.ActionUnassigned, it)
		ev.Date = prev
		c.notify.Notify(ctx, ev)
	}
	return it, nil
}

func indexOf(seq []string, id string) int {
	for i, s := range seq {
		if s == id {
			return i
		}
	}
	return -1
}

func nonNil(items []models.Item) []models.Item {
	if items == nil {
		return []models.Item{}
	}
	return items
}

func intValue(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
