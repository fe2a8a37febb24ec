package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"go.uber.org/zap"
)

const CtxProfile = "advertiser_profile"

type ProfileLoader interface {
	Profile(ctx context.Context, user *models.User) (*models.Advertiser, rbac.GateOutcome, error)
}

// RegistrationGate sends users without an approved advertiser profile to
// the register or pending page with a 303.
func RegistrationGate(profiles ProfileLoader, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		profile, outcome, err := profiles.Profile(c.Context(), user)
		if err != nil {
			log.Error("failed to load advertiser profile", zap.String("user_id", GetUserID(c).String()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: RequestID(c)})
		}

		if outcome != rbac.GateContinue {
			c.Set(fiber.HeaderLocation, outcome.Location())
			return c.Status(fiber.StatusSeeOther).JSON(dto.ErrorResponse{Error: outcome.String(), RequestID: RequestID(c)})
		}

		c.Locals(CtxProfile, profile)
		return c.Next()
	}
}

func GetProfile(c *fiber.Ctx) *models.Advertiser {
	p, _ := c.Locals(CtxProfile).(*models.Advertiser)
	return p
}
