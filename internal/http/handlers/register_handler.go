package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

// RegisterHandler serves the advertiser's own profile form.
type RegisterHandler struct {
	advertisers *services.AdvertiserService
	log         *zap.Logger
}

func NewRegisterHandler(advertisers *services.AdvertiserService, log *zap.Logger) *RegisterHandler {
	return &RegisterHandler{advertisers: advertisers, log: log}
}

func profileResponse(profile any, outcome rbac.GateOutcome) dto.ProfileResponse {
	return dto.ProfileResponse{
		Profile:  profile,
		Approved: outcome == rbac.GateContinue,
		Next:     outcome.Location(),
	}
}

func (h *RegisterHandler) Get(c *fiber.Ctx) error {
	profile, outcome, err := h.advertisers.Profile(c.Context(), middleware.GetUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, profileResponse(profile, outcome))
}

func (h *RegisterHandler) Post(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	user := middleware.GetUser(c)
	profile, err := h.advertisers.Register(c.Context(), user, registrationInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}

	outcome := rbac.Gate(user, profile)
	return ok(c, profileResponse(profile, outcome))
}

func registrationInput(req dto.RegisterRequest) services.RegistrationInput {
	return services.RegistrationInput{
		Name:      req.Name,
		Address1:  req.Address1,
		Address2:  req.Address2,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Contact:   req.Contact,
		Position:  req.Position,
		Telephone: req.Telephone,
	}
}
