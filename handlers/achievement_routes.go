// handlers/achievement_routes.go
package handlers

import (
	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, achievements *services.AchievementService) {
	// Backend-authorized claim; any relayer may submit it.
	app.Post("/achievements/claim", func(c *fiber.Ctx) error {
		var req struct {
			To           string `json:"to"`
			EventID      string `json:"event_id"`
			Tier         int    `json:"tier"`
			MetadataHash string `json:"metadata_hash"`
			Deadline     int64  `json:"deadline"`
			Signature    string `json:"signature"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		sig, err := services.DecodeSignature(req.Signature)
		if err != nil {
			return fail(c, err)
		}
		achievement, err := achievements.Claim(normalizeAccount(req.To), req.EventID, req.Tier, req.MetadataHash, req.Deadline, sig)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(achievement)
	})

	app.Get("/achievements/:account", func(c *fiber.Ctx) error {
		list, err := achievements.ListForAccount(normalizeAccount(c.Params("account")))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"achievements": list, "count": len(list)})
	})

	app.Get("/achievements/:account/:eventId", func(c *fiber.Ctx) error {
		achievement, err := achievements.GetAchievement(normalizeAccount(c.Params("account")), c.Params("eventId"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(achievement)
	})
}
