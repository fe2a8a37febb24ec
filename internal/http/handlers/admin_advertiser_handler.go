package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/repositories"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type AdvertiserHandler struct {
	advertisers *services.AdvertiserService
	log         *zap.Logger
}

func NewAdvertiserHandler(advertisers *services.AdvertiserService, log *zap.Logger) *AdvertiserHandler {
	return &AdvertiserHandler{advertisers: advertisers, log: log}
}

func (h *AdvertiserHandler) List(c *fiber.Ctx) error {
	salesperson, err := queryUUID(c, "salesperson")
	if err != nil {
		return badRequest(c, "invalid salesperson id")
	}

	advertisers, err := h.advertisers.List(c.Context(), repositories.AdvertiserFilter{
		City:          queryString(c, "city"),
		State:         queryString(c, "state"),
		Approved:      queryBool(c, "approved"),
		SalespersonID: salesperson,
		Query:         c.Query("q"),
		Limit:         queryInt(c, "limit", 20),
		Offset:        queryInt(c, "offset", 0),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, advertisers)
}

func (h *AdvertiserHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advertiser id")
	}
	detail, err := h.advertisers.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, detail)
}

func (h *AdvertiserHandler) Create(c *fiber.Ctx) error {
	a, _, err := advertiserFromRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.advertisers.Create(c.Context(), middleware.GetActor(c), a); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, a)
}

func (h *AdvertiserHandler) Update(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advertiser id")
	}
	a, keep, err := advertiserFromRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	a.ID = id

	if err := h.advertisers.Update(c.Context(), middleware.GetActor(c), a, keep); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, a)
}

func (h *AdvertiserHandler) Delete(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid advertiser id")
	}
	if err := h.advertisers.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}

func (h *AdvertiserHandler) Approve(c *fiber.Ctx) error {
	return h.setApproval(c, true)
}

func (h *AdvertiserHandler) Unapprove(c *fiber.Ctx) error {
	return h.setApproval(c, false)
}

func (h *AdvertiserHandler) setApproval(c *fiber.Ctx, approved bool) error {
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	ids, err := parseUUIDs(req.IDs)
	if err != nil || len(ids) == 0 {
		return badRequest(c, "ids must be a non-empty list of advertiser ids")
	}

	results := h.advertisers.SetApproval(c.Context(), middleware.GetActor(c), ids, approved)
	return ok(c, results)
}

// advertiserFromRequest also reports which staff fields the body left
// out, so an update can keep them.
func advertiserFromRequest(c *fiber.Ctx) (*models.Advertiser, services.KeepStored, error) {
	var req dto.AdvertiserRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, services.KeepStored{}, errInvalidBody
	}
	salesperson, err := optionalUUID(req.SalespersonID)
	if err != nil {
		return nil, services.KeepStored{}, errInvalidSalesperson
	}
	keep := services.KeepStored{
		Approved:    req.Approved == nil,
		Salesperson: req.SalespersonID == nil,
	}
	return &models.Advertiser{
		Name:          req.Name,
		Address1:      req.Address1,
		Address2:      req.Address2,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Contact:       req.Contact,
		Position:      req.Position,
		Telephone:     req.Telephone,
		Email:         req.Email,
		Approved:      req.Approved != nil && *req.Approved,
		SalespersonID: salesperson,
	}, keep, nil
}
