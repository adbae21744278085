// handlers/notification_routes.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"player-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes exposes the outbox to the mirror/indexing service:
// a cursor-based pull endpoint and an SSE stream for live tailing.
func SetupNotificationRoutes(app *fiber.App, notifier *services.Notifier) {
	app.Get("/notifications", func(c *fiber.Ctx) error {
		var cursor any
		if since := c.Query("since"); since != "" {
			parsed, err := time.Parse(time.RFC3339Nano, since)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid since cursor (use RFC3339)"})
			}
			cursor = parsed
		}
		limit := c.QueryInt("limit", 100)
		if limit < 1 || limit > 500 {
			limit = 100
		}
		notes, err := notifier.Since(cursor, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"notifications": notes, "count": len(notes)})
	})

	// StreamNotificationsSSE tails new outbox rows for the mirror service.
	app.Get("/notifications/stream", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()

			lastSeen := time.Now()

			// Initial keepalive (comment event)
			w.WriteString(":\n\n")
			w.Flush()

			for {
				select {
				case <-ticker.C:
					notes, err := notifier.Since(lastSeen, 100)
					if err != nil {
						log.Printf("SSE query error: %v", err)
						continue
					}
					if len(notes) == 0 {
						continue
					}
					lastSeen = notes[len(notes)-1].CreatedAt

					for _, note := range notes {
						payload, _ := json.Marshal(note)
						fmt.Fprintf(w, "event: %s\ndata: %s\n\n", note.Kind, payload)
					}

					if err := w.Flush(); err != nil {
						// Client disconnected
						return
					}

				case <-c.Context().Done():
					return
				}
			}
		})

		return nil
	})
}
