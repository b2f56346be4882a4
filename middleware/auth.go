// middleware/auth.go
package middleware

import (
	"log"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID    = "user_id"
	LocalUserRoles = "user_roles"

	RoleAdmin = "admin"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserRoles, roles)
		return c.Next()
	}
}

// RequireUser rejects requests without a gateway-provided user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s %s", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}
		return c.Next()
	}
}

// RequireRole rejects users without role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !slices.Contains(UserRoles(c), role) {
			log.Printf("🚫 [USER_CTX] %q lacks role %q for %s", UserID(c), role, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient role",
			})
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

func UserRoles(c *fiber.Ctx) []string {
	roles, _ := c.Locals(LocalUserRoles).([]string)
	return roles
}
