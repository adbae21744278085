package models

import "time"

// Profile tracks per-account progression. Created once by register; mutated
// only through signed stats updates; never deleted.
type Profile struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	Account string `gorm:"uniqueIndex;size:64;not null" json:"account"`

	XP               int64 `json:"xp" gorm:"default:0"`
	Level            int   `json:"level" gorm:"default:0"`
	ProgressCount    int64 `json:"progress_count" gorm:"default:0"`
	AchievementCount int64 `json:"achievement_count" gorm:"default:0"`

	LastUpdated time.Time `json:"last_updated"`

	Timestamps
}

// ProfileStats is the full stats payload a backend signer authorizes. An
// accepted update overwrites every field atomically.
type ProfileStats struct {
	XP               int64 `json:"xp"`
	Level            int   `json:"level"`
	ProgressCount    int64 `json:"progress_count"`
	AchievementCount int64 `json:"achievement_count"`
}

// Tier values derived from level. The ledger does not stop a backend from
// lowering a level (and therefore a tier); that policy lives off-system.
const (
	TierBronze   = 1
	TierSilver   = 2
	TierGold     = 3
	TierPlatinum = 4
	TierDiamond  = 5
)

var tierNames = map[int]string{
	TierBronze:   "Bronze",
	TierSilver:   "Silver",
	TierGold:     "Gold",
	TierPlatinum: "Platinum",
	TierDiamond:  "Diamond",
}

// TierForLevel is a total, non-decreasing step function of level.
func TierForLevel(level int) int {
	switch {
	case level <= 2:
		return TierBronze
	case level <= 4:
		return TierSilver
	case level <= 6:
		return TierGold
	case level <= 8:
		return TierPlatinum
	default:
		return TierDiamond
	}
}

func TierName(tier int) string {
	if name, ok := tierNames[tier]; ok {
		return name
	}
	return "Unknown"
}
