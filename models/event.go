package models

import "time"

// Event is a time-windowed happening with optional capacity. The reward
// config lives in a side table so the hot row stays compact.
type Event struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"index" json:"slug"`

	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	// MaxParticipants == 0 means unbounded.
	MaxParticipants     int64 `gorm:"default:0" json:"max_participants"`
	CurrentParticipants int64 `gorm:"default:0" json:"current_participants"`

	// No default tag: gorm would skip a false value on insert and the
	// column default would flip the event active.
	Active bool `json:"active"`

	Timestamps
}

// EventReward is attached or changed independently of the event itself.
// AchievementTier 0 means the event grants no achievement.
type EventReward struct {
	EventID         string    `gorm:"primaryKey;size:64" json:"event_id"`
	AchievementTier int       `gorm:"default:0" json:"achievement_tier"`
	CosmeticItemIDs []string  `gorm:"serializer:json" json:"cosmetic_item_ids"`
	XPBonus         int64     `gorm:"default:0" json:"xp_bonus"`
	HasReward       bool      `gorm:"default:false" json:"has_reward"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
