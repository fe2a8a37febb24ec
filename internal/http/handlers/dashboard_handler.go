package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	log       *zap.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, log: log}
}

func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	d, err := h.dashboard.Get(c.Context(), middleware.GetActor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, d)
}
