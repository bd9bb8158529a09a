package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/sanks011/Influence-IQ/internal/middleware"
	"github.com/sanks011/Influence-IQ/internal/model"
	"github.com/sanks011/Influence-IQ/internal/service"
)

type InfluenceHandler struct {
	svc *service.InfluenceService
}

func NewInfluenceHandler(svc *service.InfluenceService) *InfluenceHandler {
	return &InfluenceHandler{svc: svc}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

// Analyze handles POST /api/analyze. The body carries a channel ID, URL,
// @handle or channel name; the response is the full influence result.
func (h *InfluenceHandler) Analyze(c fiber.Ctx) error {
	var req analyzeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a url field")
	}

	identifier, errMsg := middleware.ValidateAnalyzeURL(req.URL)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	start := time.Now()
	result, err := h.svc.GetInfluence(c, identifier)
	if err != nil {
		return influenceError(c, err)
	}

	Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	Metrics.AnalysesTotal.WithLabelValues(outcomeLabel(result)).Inc()

	return c.JSON(result)
}

// GetByChannelID handles GET /api/creators/:channelId. Follows the same
// cache-then-store path as Analyze, so a missing or stale result triggers
// a full recompute.
func (h *InfluenceHandler) GetByChannelID(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	result, err := h.svc.GetInfluence(c, channelID)
	if err != nil {
		return influenceError(c, err)
	}
	return c.JSON(result)
}

// Refresh handles POST /api/creators/:channelId/refresh — a forced
// recompute that bypasses the freshness window.
func (h *InfluenceHandler) Refresh(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	start := time.Now()
	result, err := h.svc.RefreshInfluence(c, channelID)
	if err != nil {
		return influenceError(c, err)
	}

	Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	Metrics.AnalysesTotal.WithLabelValues(outcomeLabel(result)).Inc()

	return c.JSON(result)
}

// Top handles GET /api/creators/top?limit=N.
func (h *InfluenceHandler) Top(c fiber.Ctx) error {
	limit := middleware.ValidateLimit(c.Query("limit"))

	results, err := h.svc.TopCreators(c, limit)
	if err != nil {
		return influenceError(c, err)
	}
	if results == nil {
		results = []model.InfluenceResult{}
	}
	return c.JSON(fiber.Map{"creators": results})
}

func outcomeLabel(result *model.InfluenceResult) string {
	if result.Fallback {
		return "fallback"
	}
	return "synthesized"
}

// influenceError maps the service error taxonomy onto HTTP statuses.
func influenceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrIdentityNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel could not be resolved")
	case errors.Is(err, model.ErrRateLimited):
		return middleware.ErrorResponse(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "Upstream API quota exhausted, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		return middleware.ErrorResponse(c, fiber.StatusGatewayTimeout, "TIMEOUT", "Analysis timed out")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to score channel")
	}
}
