package models

import "time"

// Wallet is an internal credit balance in the smallest currency unit. It is
// the settlement rail for marketplace purchases; deposits are mirrored in by
// an admin-gated credit operation.
type Wallet struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Account string `gorm:"uniqueIndex;size:64;not null" json:"account"`
	Balance int64  `gorm:"default:0" json:"balance"`

	Timestamps
}

// MarketplaceConfig is a singleton row (ID 1) holding the fee rate and the
// protocol-held fee balance.
type MarketplaceConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FeeBps          int64     `gorm:"default:500" json:"fee_bps"`
	AccumulatedFees int64     `gorm:"default:0" json:"accumulated_fees"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
