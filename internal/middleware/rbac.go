package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/suitetest-api/internal/utils"
)

// RequireRole lets the request through only when the caller identified by
// JWTProtected holds one of roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
			allowed[role] = true
		}
	}
	message := "Access restricted to " + strings.Join(roles, " or ") + " accounts"
	if len(allowed) == 0 {
		message = "Access denied"
	}

	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "Access token required")
		}
		if !allowed[identity.Role] {
			return utils.SendError(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}
