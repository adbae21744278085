package models

import "time"

// Cosmetic categories. One equip slot exists per category per account.
const (
	CategoryHat    = "hat"
	CategoryOutfit = "outfit"
	CategoryWeapon = "weapon"
	CategoryAura   = "aura"
)

var KnownCategories = []string{CategoryHat, CategoryOutfit, CategoryWeapon, CategoryAura}

const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
	RarityMythic    = "mythic"
)

var KnownRarities = []string{
	RarityCommon, RarityUncommon, RarityRare,
	RarityEpic, RarityLegendary, RarityMythic,
}

// CosmeticItem is a catalog entry. MaxSupply == 0 means unbounded.
// MinTierRequired is advisory metadata; tier gating is enforced by callers
// with profile visibility, not by the catalog.
type CosmeticItem struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Slug string `gorm:"index" json:"slug"`

	Category string `gorm:"size:16;not null" json:"category"`
	Rarity   string `gorm:"size:16;not null" json:"rarity"`

	ImageHash string `gorm:"size:66" json:"image_hash"`
	ImageURL  string `gorm:"type:text" json:"image_url"`

	MaxSupply     int64 `gorm:"default:0" json:"max_supply"`
	CurrentSupply int64 `gorm:"default:0" json:"current_supply"`

	MinTierRequired int `gorm:"default:0" json:"min_tier_required"`

	Timestamps
}

// ItemOwnership is a fungible per-(account, item) quantity.
type ItemOwnership struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Account  string `gorm:"uniqueIndex:idx_ownership_key;size:64;not null" json:"account"`
	ItemID   string `gorm:"uniqueIndex:idx_ownership_key;size:64;not null" json:"item_id"`
	Quantity int64  `gorm:"default:0" json:"quantity"`

	Timestamps
}

// EquipSlot points an account's category slot at an item. It is a pointer,
// not a reservation: equipped items remain freely transferable, and an
// account that transfers out its last unit keeps a stale pointer. Unequip
// deletes the row outright; no soft delete, or the unique index would block
// re-equipping the slot.
type EquipSlot struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Account  string `gorm:"uniqueIndex:idx_equip_key;size:64;not null" json:"account"`
	Category string `gorm:"uniqueIndex:idx_equip_key;size:16;not null" json:"category"`
	ItemID   string `gorm:"size:64;not null" json:"item_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func ValidCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidRarity(rarity string) bool {
	for _, r := range KnownRarities {
		if r == rarity {
			return true
		}
	}
	return false
}
