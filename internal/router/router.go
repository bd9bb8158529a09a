package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/sanks011/Influence-IQ/internal/handler"
	"github.com/sanks011/Influence-IQ/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Influence *handler.InfluenceHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health and metrics (before API group, no rate limit)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	analyzeLimit := middleware.NewAnalyzeRateLimiter()
	lookupLimit := middleware.NewLookupRateLimiter()
	refreshLimit := middleware.NewRefreshRateLimiter()

	// API routes
	api := app.Group("/api")

	api.Post("/analyze", h.Influence.Analyze, analyzeLimit.Handler())

	api.Get("/creators/top", h.Influence.Top, lookupLimit.Handler())
	api.Get("/creators/:channelId", h.Influence.GetByChannelID, lookupLimit.Handler())
	api.Post("/creators/:channelId/refresh", h.Influence.Refresh, refreshLimit.Handler())
}
