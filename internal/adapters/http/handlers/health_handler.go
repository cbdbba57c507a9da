package handlers

import (
	"tradenexus/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg       *config.Config
	aiEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, aiEnabled bool) *HealthHandler {
	return &HealthHandler{cfg: cfg, aiEnabled: aiEnabled}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "TradeNexus API v1.0 is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, storage and AI status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	storageStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		storageStatus = "unhealthy"
	}

	aiStatus := "disabled"
	if h.aiEnabled {
		aiStatus = "enabled"
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":     "healthy",
			"storage": storageStatus,
			"driver":  h.cfg.Storage.Driver,
			"ai":      aiStatus,
		},
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "TradeNexus API v1.0",
		"version": "1.0.0",
	})
}
