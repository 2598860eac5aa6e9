package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/controller"
	"planner/internal/middleware"
	"planner/internal/models"
	"planner/internal/repository/repotest"
	"planner/internal/routes"
	"planner/internal/service"
)

const secret = "client-test-secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repotest.NewTestStore(t)
	h := controller.New(service.NewItems(store, nil), service.NewCalendar(store, nil), store, nil)
	srv := httptest.NewServer(routes.Router(h, routes.Options{
		Users:  service.NewUsers(store, true),
		Secret: func(context.Context) string { return secret },
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, subject string) *Client {
	t.Helper()
	tok, err := middleware.IssueToken(secret, subject, "", time.Hour)
	require.NoError(t, err)
	return New(srv.URL, tok)
}

func TestClientOrderingFlow(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	c := newClient(t, srv, "ada")

	a, err := c.CreateItem(ctx, CreateItem{Text: "A"})
	require.NoError(t, err)
	b, err := c.CreateItem(ctx, CreateItem{Text: "B"})
	require.NoError(t, err)

	res, err := c.Move(ctx, b, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewOrder)

	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b, items[0].ID)
	assert.Equal(t, a, items[1].ID)

	it, err := c.ToggleComplete(ctx, a)
	require.NoError(t, err)
	assert.True(t, it.Completed)

	del, err := c.Delete(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 1, *del.DeletedOrder)
}

func TestClientCalendarAndProjects(t *testing.T) {
	ctx := context.Background()
	c := newClient(t, newServer(t), "ada")

	p, err := c.CreateItem(ctx, CreateItem{Text: "P", Type: models.ItemTypeProject})
	require.NoError(t, err)
	child, err := c.CreateChild(ctx, p, "child", "")
	require.NoError(t, err)

	kids, err := c.Children(ctx, p)
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, child, kids[0].ID)

	_, err = c.AssignToDate(ctx, child, "2024-06-01")
	require.NoError(t, err)
	_, err = c.AssignToDateAtPosition(ctx, p, "2024-06-01", 1)
	require.NoError(t, err)

	day, err := c.CalendarDay(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, day.Items, 2)
	assert.Equal(t, p, day.Items[0].ID)

	inRange, err := c.ListByDateRange(ctx, "2024-06-01", "2024-06-30")
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	onDate, err := c.ListByDate(ctx, "2024-06-01")
	require.NoError(t, err)
	assert.Len(t, onDate, 2)

	it, err := c.Unassign(ctx, child)
	require.NoError(t, err)
	assert.Nil(t, it.AssignedDate)

	_, err = c.SetText(ctx, p, "Renamed")
	require.NoError(t, err)
	_, err = c.SetExpanded(ctx, p, true)
	require.NoError(t, err)
	color := "#abcdef"
	_, err = c.SetColor(ctx, p, &color)
	require.NoError(t, err)
	it, err = c.SetTimeEstimate(ctx, p, 1, 45)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", it.Text)
	assert.Equal(t, 45, it.TimeEstimateMinutes)

	res, err := c.DeleteProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 1, *res.DeletedOrder)
}

func TestClientErrorsMatchModelErrors(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	ada := newClient(t, srv, "ada")
	grace := newClient(t, srv, "grace")

	id, err := ada.CreateItem(ctx, CreateItem{Text: "mine"})
	require.NoError(t, err)

	_, err = grace.ToggleComplete(ctx, id)
	assert.ErrorIs(t, err, models.ErrOwnership)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)

	_, err = ada.Move(ctx, "missing", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = ada.CreateItem(ctx, CreateItem{Text: " "})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = New(srv.URL, "bogus").ListItems(ctx)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
