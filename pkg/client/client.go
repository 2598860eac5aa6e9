// Package client is a Go client for the planner HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"planner/internal/models"
)

// Client calls the planner API with a bearer token.
type Client struct {
	http *resty.Client
}

// New creates a client for the API at baseURL authenticating with token.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetTimeout(30 * time.Second)
	return &Client{http: c}
}

// APIError is a non-2xx response. It unwraps to the matching models error so
// callers can use errors.Is the same way they would against the service.
type APIError struct {
	Status  int
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("planner api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return models.ErrUnauthenticated
	case http.StatusForbidden:
		return models.ErrOwnership
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusBadRequest:
		return models.ErrInvalidArgument
	}
	return nil
}

// CreateItem is the body of CreateItem.
type CreateItem struct {
	Text     string          `json:"text"`
	Order    int             `json:"order,omitempty"`
	Type     models.ItemType `json:"type,omitempty"`
	ParentID *string         `json:"parentId,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

// do sends one request and decodes the JSON result into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	apiErr := &APIError{}
	req := c.http.R().SetContext(ctx).SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("planner request %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = resp.String()
		}
		return apiErr
	}
	return nil
}

func itemPath(id, action string) string {
	p := "/items/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// CreateItem adds an item and returns its id.
func (c *Client) CreateItem(ctx context.Context, in CreateItem) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/items", in, &out)
	return out.ID, err
}

// ListItems returns all of the caller's items.
func (c *Client) ListItems(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	err := c.do(ctx, http.MethodGet, "/items", nil, &out)
	return out, err
}

// Move moves an item to desiredOrder among its siblings.
func (c *Client) Move(ctx context.Context, id string, desiredOrder int) (models.MoveResult, error) {
	var out models.MoveResult
	err := c.do(ctx, http.MethodPost, itemPath(id, "move"), map[string]int{"desiredOrder": desiredOrder}, &out)
	return out, err
}

// ToggleComplete flips completion.
func (c *Client) ToggleComplete(ctx context.Context, id string) (*models.Item, error) {
	return c.item(ctx, http.MethodPost, itemPath(id, "toggle-complete"), nil)
}

// Delete removes a childless item.
func (c *Client) Delete(ctx context.Context, id string) (models.DeleteResult, error) {
	var out models.DeleteResult
	err := c.do(ctx, http.MethodDelete, itemPath(id, ""), nil, &out)
	return out, err
}

// DeleteProject removes an item with its subtree.
func (c *Client) DeleteProject(ctx context.Context, id string) (models.DeleteResult, error) {
	var out models.DeleteResult
	err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, &out)
	return out, err
}

// SetExpanded records the expanded flag.
func (c *Client) SetExpanded(ctx context.Context, id string, expanded bool) (*models.Item, error) {
	return c.item(ctx, http.MethodPatch, itemPath(id, "expanded"), map[string]bool{"expanded": expanded})
}

// SetColor sets the colour; nil clears it.
func (c *Client) SetColor(ctx context.Context, id string, color *string) (*models.Item, error) {
	return c.item(ctx, http.MethodPatch, itemPath(id, "color"), map[string]*string{"color": color})
}

// SetText renames an item.
func (c *Client) SetText(ctx context.Context, id, text string) (*models.Item, error) {
	return c.item(ctx, http.MethodPatch, itemPath(id, "text"), map[string]string{"text": text})
}

// SetTimeEstimate records the time estimate.
func (c *Client) SetTimeEstimate(ctx context.Context, id string, hours, minutes int) (*models.Item, error) {
	return c.item(ctx, http.MethodPatch, itemPath(id, "time-estimate"), map[string]int{"hours": hours, "minutes": minutes})
}

// ListByDateRange returns items assigned within [start, end].
func (c *Client) ListByDateRange(ctx context.Context, start, end string) ([]models.Item, error) {
	var out []models.Item
	q := url.Values{"start": {start}, "end": {end}}
	err := c.do(ctx, http.MethodGet, "/items/range?"+q.Encode(), nil, &out)
	return out, err
}

// ListByDate returns the items assigned to date.
func (c *Client) ListByDate(ctx context.Context, date string) ([]models.Item, error) {
	var out []models.Item
	err := c.do(ctx, http.MethodGet, "/items/by-date/"+url.PathEscape(date), nil, &out)
	return out, err
}

// CalendarDay returns a day with its items in order.
func (c *Client) CalendarDay(ctx context.Context, date string) (*models.DayView, error) {
	var out models.DayView
	if err := c.do(ctx, http.MethodGet, "/calendar-days/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignToDate places an item using a date token.
func (c *Client) AssignToDate(ctx context.Context, id, dateToken string) (*models.Item, error) {
	return c.item(ctx, http.MethodPost, itemPath(id, "assign"), map[string]string{"dateToken": dateToken})
}

// AssignToDateAtPosition places an item on date at dayOrder.
func (c *Client) AssignToDateAtPosition(ctx context.Context, id, date string, dayOrder int) (*models.Item, error) {
	body := map[string]interface{}{"date": date, "dayOrder": dayOrder}
	return c.item(ctx, http.MethodPost, itemPath(id, "assign-position"), body)
}

// Unassign takes an item off its date.
func (c *Client) Unassign(ctx context.Context, id string) (*models.Item, error) {
	return c.item(ctx, http.MethodPost, itemPath(id, "unassign"), nil)
}

// CreateChild appends a child under parentID and returns its id.
func (c *Client) CreateChild(ctx context.Context, parentID, text string, typ models.ItemType) (string, error) {
	var out idResponse
	body := map[string]string{"text": text, "type": string(typ)}
	err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(parentID)+"/children", body, &out)
	return out.ID, err
}

// Children lists the children of parentID.
func (c *Client) Children(ctx context.Context, parentID string) ([]models.Item, error) {
	var out []models.Item
	err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(parentID)+"/children", nil, &out)
	return out, err
}

func (c *Client) item(ctx context.Context, method, path string, body interface{}) (*models.Item, error) {
	var out models.Item
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
