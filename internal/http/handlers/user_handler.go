package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	accounts *services.AccountService
	log      *zap.Logger
}

func NewUserHandler(accounts *services.AccountService, log *zap.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	return ok(c, middleware.GetUser(c))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	userID := middleware.GetUserID(c)
	if err := h.accounts.ChangePassword(c.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, nil)
}

// Staff lists the users assignable as salesperson.
func (h *UserHandler) Staff(c *fiber.Ctx) error {
	users, err := h.accounts.Staff(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, users)
}
