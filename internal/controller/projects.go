package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/models"
)

// CreateChild appends a new item under project :id.
func (h *Handler) CreateChild(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Text string          `json:"text"`
		Type models.ItemType `json:"type"`
	}
	if !bind(c, &body) {
		return
	}
	id, err := h.items.CreateChild(c.Request.Context(), uid, c.Param("id"), body.Text, body.Type)
	if err != nil {
		writeError(c, "CreateChild", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListChildren returns the children of project :id.
func (h *Handler) ListChildren(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	items, err := h.items.ListChildren(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, "ListChildren", err)
		return
	}
	c.JSON(http.StatusOK, nonNil(items))
}

// DeleteProject removes project :id with its whole subtree.
func (h *Handler) DeleteProject(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	res, err := h.items.DeleteProject(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		writeError(c, "DeleteProject", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
