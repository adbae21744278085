package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"player-rewards-system/models"

	"gorm.io/gorm"
)

// MirrorPushClient delivers notification outbox rows to the indexing/mirror
// service so it can reconstruct every state transition without re-reading
// full state.
type MirrorPushClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewMirrorPushClient(db *gorm.DB) *MirrorPushClient {
	baseURL := os.Getenv("MIRROR_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("MIRROR_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("GATEWAY_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("GATEWAY_SERVICE_TOKEN environment variable is required for mirror push")
	}

	return &MirrorPushClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PushBatch POSTs a batch of notifications to the mirror service.
func (c *MirrorPushClient) PushBatch(ctx context.Context, notes []models.Notification) error {
	payload, err := json.Marshal(map[string]any{"notifications": notes})
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/api/v1/internal/notifications", c.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mirror service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mirror service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PushNotifications polls the outbox and delivers undelivered rows in order.
// Rows are marked delivered only after the mirror service accepts them, so a
// failed push retries on the next tick.
func PushNotifications(ctx context.Context, client *MirrorPushClient, pollInterval time.Duration) {
	log.Println("Starting notification mirror push (DB outbox)...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification mirror push stopped.")
			return
		case <-ticker.C:
			var notes []models.Notification
			err := client.DB.Where("delivered_at IS NULL").
				Order("created_at ASC").
				Limit(100).
				Find(&notes).Error
			if err != nil {
				log.Printf("❌ Error reading notification outbox: %v", err)
				continue
			}
			if len(notes) == 0 {
				continue
			}

			if err := client.PushBatch(ctx, notes); err != nil {
				log.Printf("❌ Error pushing notifications: %v", err)
				continue
			}

			ids := make([]string, len(notes))
			for i, n := range notes {
				ids[i] = n.ID
			}
			now := time.Now()
			if err := client.DB.Model(&models.Notification{}).
				Where("id IN ?", ids).
				Update("delivered_at", now).Error; err != nil {
				log.Printf("❌ Error marking notifications delivered: %v", err)
				continue
			}

			log.Printf("📤 Pushed %d notification(s) to mirror service.", len(notes))
		}
	}
}
