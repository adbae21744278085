// handlers/event_routes.go
package handlers

import (
	"player-rewards-system/models"
	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEventRoutes registers event endpoints. Mutations live under /manage
// (gateway account context required; the service checks the event manager
// role); reads are public.
func SetupEventRoutes(app *fiber.App, events *services.EventService) {
	app.Post("/manage/events", func(c *fiber.Ctx) error {
		var req struct {
			ID     string              `json:"id"`
			Event  services.EventInput `json:"event"`
			Reward *models.EventReward `json:"reward,omitempty"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.ID == "" || req.Event.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id and event.name are required"})
		}
		event, err := events.CreateEvent(caller(c), req.ID, req.Event, req.Reward)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	})

	app.Put("/manage/events/:id", func(c *fiber.Ctx) error {
		var req services.EventInput
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		event, err := events.UpdateEvent(caller(c), c.Params("id"), req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	app.Put("/manage/events/:id/reward", func(c *fiber.Ctx) error {
		var req models.EventReward
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := events.SetEventReward(caller(c), c.Params("id"), req); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"event_id": c.Params("id"), "reward": req})
	})

	// Invoked by the trusted completion-verification process.
	app.Post("/manage/events/:id/participants", func(c *fiber.Ctx) error {
		event, err := events.IncrementParticipants(caller(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(event)
	})

	app.Get("/events", func(c *fiber.Ctx) error {
		activeOnly := c.QueryBool("active", false)
		list, err := events.ListEvents(activeOnly)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"events": list, "count": len(list)})
	})

	app.Get("/events/:id", func(c *fiber.Ctx) error {
		event, reward, err := events.GetEvent(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"event": event, "reward": reward})
	})

	app.Get("/events/:id/active", func(c *fiber.Ctx) error {
		active, err := events.IsEventActive(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"event_id": c.Params("id"), "active": active})
	})
}
