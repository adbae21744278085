// handlers/profile_routes.go
package handlers

import (
	"player-rewards-system/models"
	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupProfileRoutes registers profile endpoints. Paths under /user require
// the gateway account context (wired in main); signed operations carry their
// own authority and accept any relayer.
func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService, auth *services.AuthorizerService) {
	app.Post("/user/register", func(c *fiber.Ctx) error {
		profile, err := profiles.Register(caller(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	})

	// Relayed registration: the signature must come from the subject account.
	app.Post("/profiles/register-for", func(c *fiber.Ctx) error {
		var req struct {
			Account   string `json:"account"`
			Deadline  int64  `json:"deadline"`
			Signature string `json:"signature"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		sig, err := services.DecodeSignature(req.Signature)
		if err != nil {
			return fail(c, err)
		}
		profile, err := profiles.RegisterFor(normalizeAccount(req.Account), req.Deadline, sig)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	})

	// Backend-authorized stats overwrite.
	app.Post("/profiles/:account/stats", func(c *fiber.Ctx) error {
		var req struct {
			Stats     models.ProfileStats `json:"stats"`
			Deadline  int64               `json:"deadline"`
			Signature string              `json:"signature"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		sig, err := services.DecodeSignature(req.Signature)
		if err != nil {
			return fail(c, err)
		}
		profile, err := profiles.UpdateStats(normalizeAccount(c.Params("account")), req.Stats, req.Deadline, sig)
		if err != nil {
			return fail(c, err)
		}
		tier := models.TierForLevel(profile.Level)
		return c.JSON(fiber.Map{
			"profile":   profile,
			"tier":      tier,
			"tier_name": models.TierName(tier),
		})
	})

	app.Get("/profiles/:account", func(c *fiber.Ctx) error {
		profile, err := profiles.GetProfile(normalizeAccount(c.Params("account")))
		if err != nil {
			return fail(c, err)
		}
		tier := models.TierForLevel(profile.Level)
		return c.JSON(fiber.Map{
			"profile":   profile,
			"tier":      tier,
			"tier_name": models.TierName(tier),
		})
	})

	// Relayers and the backend read the next expected nonce here.
	app.Get("/profiles/:account/nonce/:namespace", func(c *fiber.Ctx) error {
		account := normalizeAccount(c.Params("account"))
		value, err := auth.NonceFor(account, c.Params("namespace"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"account":   account,
			"namespace": c.Params("namespace"),
			"nonce":     value,
		})
	})
}
