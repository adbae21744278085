// middleware/account_context.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AccountContextMiddleware extracts the caller account set by the Gateway.
// Signed operations carry their own authority; everything else (direct
// registration, admin surface, equip, marketplace calls) needs a caller.
func AccountContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := strings.TrimSpace(c.Get("X-User-Account"))
		if account == "" {
			log.Printf("❌ [ACCOUNT_CTX] X-User-Account required but missing: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-Account — request must come through gateway with auth context",
			})
		}

		c.Locals("account", strings.ToLower(account))
		return c.Next()
	}
}
