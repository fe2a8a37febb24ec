package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type IssueHandler struct {
	issues *services.IssueService
	log    *zap.Logger
}

func NewIssueHandler(issues *services.IssueService, log *zap.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, log: log}
}

func (h *IssueHandler) List(c *fiber.Ctx) error {
	issues, err := h.issues.List(c.Context(), queryIntPtr(c, "volume"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, issues)
}

func (h *IssueHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid issue id")
	}
	issue, err := h.issues.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, issue)
}

func (h *IssueHandler) Create(c *fiber.Ctx) error {
	var req dto.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	issue := &models.Issue{Title: req.Title, Volume: req.Volume, IssueNumber: req.IssueNumber}
	if err := h.issues.Create(c.Context(), middleware.GetActor(c), issue); err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, issue)
}

func (h *IssueHandler) Update(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid issue id")
	}
	var req dto.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	issue := &models.Issue{ID: id, Title: req.Title, Volume: req.Volume, IssueNumber: req.IssueNumber}
	if err := h.issues.Update(c.Context(), middleware.GetActor(c), issue); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, issue)
}

func (h *IssueHandler) Delete(c *fiber.Ctx) error {
	id, valid := paramID(c)
	if !valid {
		return badRequest(c, "invalid issue id")
	}
	if err := h.issues.Delete(c.Context(), middleware.GetActor(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}
