package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/models"
	"planner/internal/service"
)

// ListItems returns every item of the caller (cache-first as raw bytes).
func (h *Handler) ListItems(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if b, ok := h.cache.GetRaw(ctx, uid); ok {
		c.Data(http.StatusOK, "application/json", b)
		return
	}
	v, err, _ := h.lists.Do(uid, func() (interface{}, error) {
		items, err := h.items.ListAll(context.WithoutCancel(ctx), uid)
		if err != nil {
			return nil, err
		}
		return json.Marshal(nonNil(items))
	})
	if err != nil {
		writeError(c, "ListItems", err)
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	h.cache.SetRawAsync(uid, b)
}

// CreateItem adds an item at the top level or under parentId.
func (h *Handler) CreateItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Text     string          `json:"text"`
		Order    int             `json:"order"`
		Type     models.ItemType `json:"type"`
		ParentID *string         `json:"parentId"`
	}
	if !bind(c, &body) {
		return
	}
	id, err := h.items.Create(c.Request.Context(), uid, service.CreateInput{
		Text:     body.Text,
		Order:    body.Order,
		Type:     body.Type,
		ParentID: body.ParentID,
	})
	if err != nil {
		writeError(c, "CreateItem", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// MoveItem moves an active item to desiredOrder among its siblings.
func (h *Handler) MoveItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		DesiredOrder *int `json:"desiredOrder" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	res, err := h.items.Move(c.Request.Context(), uid, c.Param("id"), *body.DesiredOrder)
	if err != nil {
		writeError(c, "MoveItem", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ToggleComplete flips an item between active and completed.
func (h *Handler) ToggleComplete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	it, err := h.items.ToggleComplete(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, "ToggleComplete", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// DeleteItem removes a childless item.
func (h *Handler) DeleteItem(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	res, err := h.items.Delete(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, "DeleteItem", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetExpanded records the expanded flag.
func (h *Handler) SetExpanded(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Expanded *bool `json:"expanded" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "SetExpanded")(h.items.SetExpanded(c.Request.Context(), uid, c.Param("id"), *body.Expanded))
}

// SetColor sets or clears the colour.
func (h *Handler) SetColor(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Color *string `json:"color"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "SetColor")(h.items.SetColor(c.Request.Context(), uid, c.Param("id"), body.Color))
}

// SetText renames an item.
func (h *Handler) SetText(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "SetText")(h.items.SetText(c.Request.Context(), uid, c.Param("id"), body.Text))
}

// SetTimeEstimate records the time estimate.
func (h *Handler) SetTimeEstimate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Hours   int `json:"hours"`
		Minutes int `json:"minutes"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "SetTimeEstimate")(h.items.SetTimeEstimate(c.Request.Context(), uid, c.Param("id"), body.Hours, body.Minutes))
}

// ListByDateRange returns items assigned within ?start= and ?end=.
func (h *Handler) ListByDateRange(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	items, err := h.items.ListByDateRange(c.Request.Context(), uid, c.Query("start"), c.Query("end"))
	if err != nil {
		writeError(c, "ListByDateRange", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// ListByDate returns the items assigned to :date.
func (h *Handler) ListByDate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	items, err := h.items.ListByDate(c.Request.Context(), uid, c.Param("date"))
	if err != nil {
		writeError(c, "ListByDate", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

func (h *Handler) respondItem(c *gin.Context, op string) func(*models.Item, error) {
	return func(it *models.Item, err error) {
		if err != nil {
			writeError(c, op, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}
