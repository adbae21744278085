package services

import (
	"log"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier writes one outbox row per state transition. Rows are written in
// the same transaction as the mutation they describe, so the mirror service
// never sees a notification for an aborted operation.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

// Emit persists a notification via the caller's transaction.
func (n *Notifier) Emit(tx *gorm.DB, kind, account string, payload map[string]any) error {
	note := models.Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Account: account,
		Payload: payload,
	}
	if err := tx.Create(&note).Error; err != nil {
		return err
	}
	log.Printf("🔔 [NOTIFY] %s account=%s", kind, account)
	return nil
}

// Undelivered returns the oldest notifications not yet pushed to the mirror.
func (n *Notifier) Undelivered(limit int) ([]models.Notification, error) {
	var notes []models.Notification
	err := n.DB.Where("delivered_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

// Since returns notifications created after the given cursor, oldest first.
func (n *Notifier) Since(cursor any, limit int) ([]models.Notification, error) {
	var notes []models.Notification
	q := n.DB.Order("created_at ASC").Limit(limit)
	if cursor != nil {
		q = q.Where("created_at > ?", cursor)
	}
	err := q.Find(&notes).Error
	return notes, err
}
