package models

import "time"

// Achievement is immutable once written. Uniqueness on (account, event)
// gives O(1) duplicate checks; insertion order supports enumeration.
type Achievement struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Account      string    `gorm:"uniqueIndex:idx_achievement_key;size:64;not null" json:"account"`
	EventID      string    `gorm:"uniqueIndex:idx_achievement_key;size:64;not null" json:"event_id"`
	Tier         int       `gorm:"not null" json:"tier"`
	MetadataHash string    `gorm:"size:66" json:"metadata_hash"`
	UnlockedAt   time.Time `json:"unlocked_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
