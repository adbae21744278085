package models

import "time"

// Notification kinds, one per state transition the mirror service indexes.
const (
	NotifyProfileRegistered   = "profile.registered"
	NotifyProfileStatsUpdated = "profile.stats_updated"
	NotifyProfileTierUpgraded = "profile.tier_upgraded"
	NotifyAchievementClaimed  = "achievement.claimed"
	NotifyEventCreated        = "event.created"
	NotifyEventUpdated        = "event.updated"
	NotifyEventRewardSet      = "event.reward_set"
	NotifyItemCreated         = "item.created"
	NotifyItemMinted          = "item.minted"
	NotifyListingCreated      = "listing.created"
	NotifyListingCancelled    = "listing.cancelled"
	NotifyListingSold         = "listing.sold"
	NotifyFeesWithdrawn       = "fees.withdrawn"
	NotifyRoleGranted         = "role.granted"
	NotifyRoleRevoked         = "role.revoked"
	NotifyWalletCredited      = "wallet.credited"
)

// Notification is an outbox row written in the same transaction as the state
// change it describes. Payload carries enough fields to reconstruct the
// transition without re-reading full state.
type Notification struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	Kind        string         `gorm:"index;size:48;not null" json:"kind"`
	Account     string         `gorm:"index;size:64" json:"account"`
	Payload     map[string]any `gorm:"serializer:json" json:"payload"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeliveredAt *time.Time     `gorm:"index" json:"delivered_at,omitempty"`
}
