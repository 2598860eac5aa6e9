package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"planner/internal/controller"
	"planner/internal/metrics"
	"planner/internal/middleware"
)

// Options carries what the router needs beyond the handlers.
type Options struct {
	Users   middleware.UserResolver
	Secret  func(ctx context.Context) string
	Metrics bool
}

func Router(h *controller.Handler, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())
	if opts.Metrics {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Health for load balancers and K8s probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	// Protected: JWT required, subject must map to a user
	api := router.Group("")
	api.Use(middleware.Auth(opts.Secret), middleware.ResolveUser(opts.Users))
	{
		api.GET("/items", h.ListItems)
		api.POST("/items", h.CreateItem)
		api.GET("/items/range", h.ListByDateRange)
		api.GET("/items/by-date/:date", h.ListByDate)
		api.POST("/items/:id/move", h.MoveItem)
		api.POST("/items/:id/toggle-complete", h.ToggleComplete)
		api.DELETE("/items/:id", h.DeleteItem)
		api.PATCH("/items/:id/expanded", h.SetExpanded)
		api.PATCH("/items/:id/color", h.SetColor)
		api.PATCH("/items/:id/text", h.SetText)
		api.PATCH("/items/:id/time-estimate", h.SetTimeEstimate)

		api.POST("/items/:id/assign", h.AssignToDate)
		api.POST("/items/:id/assign-position", h.AssignToDateAtPosition)
		api.POST("/items/:id/unassign", h.Unassign)
		api.GET("/calendar-days/:date", h.GetCalendarDay)

		api.POST("/projects/:id/children", h.CreateChild)
		api.GET("/projects/:id/children", h.ListChildren)
		api.DELETE("/projects/:id", h.DeleteProject)
	}

	return router
}
