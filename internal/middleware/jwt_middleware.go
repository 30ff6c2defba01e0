package middleware

import (
	"strings"

	"etalase/internal/models"
	"etalase/internal/services"
	"etalase/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// ClaimsKey is the fiber.Ctx locals key the validated claims are stored under.
const ClaimsKey = "claims"

// SessionRequired is a Fiber middleware that rejects requests without a valid
// session. The token is read from the session cookie, or from an
// "Authorization: Bearer <token>" header for non-browser clients.
func SessionRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No active session",
			})
		}

		claims, err := authService.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			log := logger.Get()
			log.Debug().Err(err).Msg("session validation failed")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired session",
			})
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RoleRequired rejects sessions without the given role. It must run after
// SessionRequired.
func RoleRequired(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by SessionRequired, or nil.
func ClaimsFrom(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(ClaimsKey).(*services.Claims)
	return claims
}

// TokenFromRequest extracts the session token from the cookie or the
// Authorization header.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
