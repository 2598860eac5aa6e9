package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/models"
	"planner/internal/repository"
	"planner/internal/repository/repotest"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type recorder struct {
	mu     sync.Mutex
	events []models.ItemEvent
}

func (r *recorder) Notify(_ context.Context, ev models.ItemEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.Store
	items    *Items
	calendar *Calendar
	events   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewTestStore(t)
	rec := &recorder{}
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		items:    NewItems(store, rec),
		calendar: NewCalendar(store, rec),
		events:   rec,
	}
}

func (f *fixture) create(userID, text string, parentID *string) string {
	f.t.Helper()
	id, err := f.items.Create(f.ctx, userID, CreateInput{Text: text, ParentID: parentID})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) item(id string) *models.Item {
	f.t.Helper()
	it, err := f.store.Repo().Item(f.ctx, id)
	require.NoError(f.t, err)
	return it
}

func (f *fixture) exists(id string) bool {
	_, err := f.store.Repo().Item(f.ctx, id)
	return err == nil
}

// ranks returns id -> mainOrder for the active members of a sibling group.
func (f *fixture) ranks(userID string, parentID *string) map[string]int {
	f.t.Helper()
	siblings, err := f.store.Repo().ActiveSiblings(f.ctx, userID, parentID)
	require.NoError(f.t, err)
	out := make(map[string]int, len(siblings))
	for _, it := range siblings {
		require.NotNil(f.t, it.MainOrder, "active item %s has no rank", it.ID)
		out[it.ID] = *it.MainOrder
	}
	return out
}

// assertDense checks that a sibling group's active ranks are exactly 1..N.
func (f *fixture) assertDense(userID string, parentID *string) {
	f.t.Helper()
	ranks := f.ranks(userID, parentID)
	got := make([]int, 0, len(ranks))
	for _, n := range ranks {
		got = append(got, n)
	}
	sort.Ints(got)
	for i, n := range got {
		assert.Equal(f.t, i+1, n, "ranks %v are not dense", got)
	}
}

// assertCalendarAgrees checks that every item tagged with one of dates sits
// exactly once in that day's sequence, and that no day lists an item tagged
// with some other date.
func (f *fixture) assertCalendarAgrees(userID string, dates ...string) {
	f.t.Helper()
	r := f.store.Repo()
	all, err := r.ItemsByUser(f.ctx, userID)
	require.NoError(f.t, err)
	tagged := make(map[string]string, len(all))
	for _, it := range all {
		tagged[it.ID] = it.Date()
	}
	for _, date := range dates {
		day, err := r.Day(f.ctx, userID, date)
		if err != nil {
			require.ErrorIs(f.t, err, models.ErrNotFound)
			continue
		}
		counts := map[string]int{}
		for _, id := range day.Items {
			counts[id]++
			assert.Equal(f.t, date, tagged[id], "day %s lists %s", date, id)
		}
		for id, d := range tagged {
			if d == date {
				assert.Equal(f.t, 1, counts[id], "item %s on %s appears %d times", id, date, counts[id])
			}
		}
	}
}

func (f *fixture) daySeq(userID, date string) []string {
	f.t.Helper()
	day, err := f.store.Repo().Day(f.ctx, userID, date)
	require.NoError(f.t, err)
	return []string(day.Items)
}

func (f *fixture) dayRanks(userID, date string) map[string]int {
	f.t.Helper()
	items, err := f.store.Repo().ItemsOnDate(f.ctx, userID, date)
	require.NoError(f.t, err)
	out := make(map[string]int, len(items))
	for _, it := range items {
		if it.DayOrder != nil {
			out[it.ID] = *it.DayOrder
		}
	}
	return out
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
