package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"planner/internal/cache"
	"planner/internal/middleware"
	"planner/internal/models"
	"planner/internal/repository"
	"planner/internal/service"
	"planner/pkg/logger"
)

// Handler serves the item, project and calendar routes.
type Handler struct {
	items    *service.Items
	calendar *service.Calendar
	store    *repository.Store
	cache    *cache.Items
	lists    singleflight.Group
}

// New wires the handlers. cache may be nil.
func New(items *service.Items, calendar *service.Calendar, store *repository.Store, c *cache.Items) *Handler {
	return &Handler{items: items, calendar: calendar, store: store, cache: c}
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if the database (and Redis, when configured) answer.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
			return
		}
	}
	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
		return
	}
	c.String(http.StatusOK, "OK")
}

// userID returns the resolved caller, writing 401 when there is none.
func userID(c *gin.Context) (string, bool) {
	uid := middleware.CurrentUserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return uid, true
}

// bind decodes the JSON body into dst, writing 400 when it does not fit.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return false
	}
	return true
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOwnership):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		logger.Debug(ctx, op+" rejected", "error", err, "status", status)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if ctx.Err() != nil || isContextErr(err) {
		return
	}
	logger.Error(ctx, op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func nonNil(items []models.Item) []models.Item {
	if items == nil {
		return []models.Item{}
	}
	return items
}
