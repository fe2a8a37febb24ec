package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

func (h *MetaHandler) GetSizes(c *fiber.Ctx) error {
	return ok(c, models.Sizes)
}

func (h *MetaHandler) GetStates(c *fiber.Ctx) error {
	return ok(c, models.States())
}

type gateStage struct {
	ID       string `json:"id"`
	Location string `json:"location,omitempty"`
}

// GetGateStages lists the registration gate outcomes and where each redirects.
func (h *MetaHandler) GetGateStages(c *fiber.Ctx) error {
	outcomes := []rbac.GateOutcome{rbac.GateContinue, rbac.GateRedirectToRegister, rbac.GateRedirectToPending}
	stages := make([]gateStage, 0, len(outcomes))
	for _, o := range outcomes {
		stages = append(stages, gateStage{ID: o.String(), Location: o.Location()})
	}
	return ok(c, stages)
}
