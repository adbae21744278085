// handlers/admin_routes.go
package handlers

import (
	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers the role and wallet administration surface.
// These are role-gated, not signature-gated.
func SetupAdminRoutes(app *fiber.App, access *services.AccessControlService, wallets *services.WalletService) {
	app.Post("/admin/roles/grant", func(c *fiber.Ctx) error {
		var req struct {
			Role    string `json:"role"`
			Account string `json:"account"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := access.GrantRole(caller(c), req.Role, normalizeAccount(req.Account)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"role": req.Role, "account": req.Account, "granted": true})
	})

	app.Post("/admin/roles/revoke", func(c *fiber.Ctx) error {
		var req struct {
			Role    string `json:"role"`
			Account string `json:"account"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := access.RevokeRole(caller(c), req.Role, normalizeAccount(req.Account)); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"role": req.Role, "account": req.Account, "granted": false})
	})

	app.Get("/roles/:role/:account", func(c *fiber.Ctx) error {
		account := normalizeAccount(c.Params("account"))
		return c.JSON(fiber.Map{
			"role":    c.Params("role"),
			"account": account,
			"held":    access.HasRole(c.Params("role"), account),
		})
	})

	// Mirrors an external deposit into an account's settlement balance.
	app.Post("/admin/wallets/credit", func(c *fiber.Ctx) error {
		var req struct {
			Account string `json:"account"`
			Amount  int64  `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := wallets.Credit(caller(c), normalizeAccount(req.Account), req.Amount); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"account": req.Account, "credited": req.Amount})
	})

	app.Get("/wallets/:account", func(c *fiber.Ctx) error {
		balance, err := wallets.BalanceOf(normalizeAccount(c.Params("account")))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"account": c.Params("account"), "balance": balance})
	})
}
