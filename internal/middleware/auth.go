package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/auth"
	"github.com/lampoon-ads/backend/internal/http/dto"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/rbac"
	"go.uber.org/zap"
)

const (
	CtxUserID = "user_id"
	CtxUser   = "user"
)

// UserLoader resolves the token's subject to a current user record.
type UserLoader interface {
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

func AuthMiddleware(secret string, users UserLoader, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "missing authorization header", RequestID: RequestID(c)})
		}
		tokenStr, ok := BearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid authorization format", RequestID: RequestID(c)})
		}

		claims, err := auth.ParseJWT(secret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired token", RequestID: RequestID(c)})
		}

		user, err := users.Me(c.Context(), claims.UserID)
		if err != nil {
			log.Debug("token user not found", zap.String("user_id", claims.UserID.String()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired token", RequestID: RequestID(c)})
		}

		c.Locals(CtxUserID, user.ID)
		c.Locals(CtxUser, user)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(CtxUser).(*models.User)
	return u
}

func GetActor(c *fiber.Ctx) rbac.Actor {
	return rbac.ActorFor(GetUser(c))
}

// StaffMiddleware admits staff and superusers only.
func StaffMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetActor(c).CanAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "staff access required", RequestID: RequestID(c)})
		}
		return c.Next()
	}
}
