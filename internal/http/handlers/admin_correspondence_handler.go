package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type CorrespondenceHandler struct {
	correspondence *services.CorrespondenceService
	log            *zap.Logger
}

func NewCorrespondenceHandler(correspondence *services.CorrespondenceService, log *zap.Logger) *CorrespondenceHandler {
	return &CorrespondenceHandler{correspondence: correspondence, log: log}
}

func (h *CorrespondenceHandler) List(c *fiber.Ctx) error {
	advertiser, err := queryUUID(c, "advertiser")
	if err != nil {
		return badRequest(c, "invalid advertiser id")
	}

	entries, err := h.correspondence.List(c.Context(), repositories.CorrespondenceFilter{
		AdvertiserID: advertiser,
		From:         queryString(c, "from"),
		To:           queryString(c, "to"),
		Query:        c.Query("q"),
		Limit:        queryInt(c, "limit", 20),
		Offset:       queryInt(c, "offset", 0),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, entries)
}

func (h *CorrespondenceHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid correspondence id")
	}
	entry, err := h.correspondence.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, entry)
}

func (h *CorrespondenceHandler) Create(c *fiber.Ctx) error {
	var req dto.CorrespondenceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	advertiserID, err := uuid.Parse(strings.TrimSpace(req.AdvertiserID))
	if err != nil {
		return badRequest(c, "invalid advertiser id")
	}

	entry := &models.Correspondence{
		AdvertiserID: advertiserID,
		From:         req.From,
		To:           req.To,
		Text:         req.Text,
		Receptive:    req.Receptive,
	}
	if err := h.correspondence.Create(c.Context(), middleware.GetActor(c), entry); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, entry)
}

// SetReceptive edits the rating, the only mutable field of an entry.
func (h *CorrespondenceHandler) SetReceptive(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid correspondence id")
	}
	var req dto.ReceptiveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry, err := h.correspondence.SetReceptive(c.Context(), middleware.GetActor(c), id, req.Receptive)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, entry)
}

func (h *CorrespondenceHandler) Delete(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid correspondence id")
	}
	if err := h.correspondence.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}
