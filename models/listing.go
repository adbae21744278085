package models

import "time"

// EscrowAccount holds listed units between listing creation and sale or
// cancellation. It is a reserved ownership bucket, never a real caller.
const EscrowAccount = "marketplace.escrow"

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// Listing state machine: active → sold | cancelled (terminal). Partial sales
// keep the listing active while Amount > 0.
type Listing struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Seller       string        `gorm:"index;size:64;not null" json:"seller"`
	ItemID       string        `gorm:"index;size:64;not null" json:"item_id"`
	Amount       int64         `gorm:"not null" json:"amount"`
	PricePerUnit int64         `gorm:"not null" json:"price_per_unit"`
	Status       ListingStatus `gorm:"size:16;index;default:'active'" json:"status"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	SoldAt       *time.Time    `json:"sold_at,omitempty"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}
