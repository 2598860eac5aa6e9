package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCalendarDay returns the day for :date with its items in day order.
func (h *Handler) GetCalendarDay(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	view, err := h.calendar.Get(c.Request.Context(), uid, c.Param("date"))
	if err != nil {
		writeError(c, "GetCalendarDay", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AssignToDate places item :id using a date token ("YYYY-MM-DD" plus an
// optional id to insert before).
func (h *Handler) AssignToDate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		DateToken string `json:"dateToken" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "AssignToDate")(h.calendar.AssignToDate(c.Request.Context(), uid, c.Param("id"), body.DateToken))
}

// AssignToDateAtPosition places item :id on date at an explicit day rank.
func (h *Handler) AssignToDateAtPosition(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var body struct {
		Date     string `json:"date" binding:"required"`
		DayOrder *int   `json:"dayOrder" binding:"required"`
	}
	if !bind(c, &body) {
		return
	}
	h.respondItem(c, "AssignToDateAtPosition")(
		h.calendar.AssignToDateAtPosition(c.Request.Context(), uid, c.Param("id"), body.Date, *body.DayOrder))
}

// Unassign takes item :id off its date.
func (h *Handler) Unassign(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	h.respondItem(c, "Unassign")(h.calendar.Unassign(c.Request.Context(), uid, c.Param("id")))
}
