package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"quizduel/internal/service/auth"
)

const (
	UserIDContextKey    = "user_id"
	SessionIDContextKey = "session_id"

	// LegacyTokenHeader is accepted alongside the Authorization header for older mobile builds.
	LegacyTokenHeader = "x-auth-token"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractToken(c)
		if err != nil {
			return err
		}

		claims, err := authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(UserIDContextKey, claims.UserID)
		c.Locals(SessionIDContextKey, claims.SessionID)

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", Unauthorized("Invalid authorization header format")
		}
		return parts[1], nil
	}
	if token := c.Get(LegacyTokenHeader); token != "" {
		return token, nil
	}
	return "", Unauthorized("Missing authorization header")
}

func GetCurrentUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals(UserIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func GetSessionID(c *fiber.Ctx) uuid.UUID {
	sessionID, ok := c.Locals(SessionIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return sessionID
}
