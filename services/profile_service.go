package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB       *gorm.DB
	Auth     *AuthorizerService
	Notifier *Notifier
}

func NewProfileService(db *gorm.DB, auth *AuthorizerService, notifier *Notifier) *ProfileService {
	return &ProfileService{DB: db, Auth: auth, Notifier: notifier}
}

// Register creates a zeroed profile for the caller. Profiles are permanent:
// there is no delete path.
func (s *ProfileService) Register(caller string) (*models.Profile, error) {
	return s.createProfile(caller)
}

// RegisterFor is the relayed variant: anyone may submit it, but the
// signature must come from the subject account itself. It consumes the
// "register" nonce namespace, separate from stats updates.
func (s *ProfileService) RegisterFor(account string, deadline int64, sig []byte) (*models.Profile, error) {
	err := s.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return s.Auth.RegisterDigest(account, nonce, deadline)
		})
	if err != nil {
		return nil, err
	}
	return s.createProfile(account)
}

func (s *ProfileService) createProfile(account string) (*models.Profile, error) {
	var created *models.Profile
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Profile
		err := tx.Where("account = ?", account).First(&existing).Error
		if err == nil {
			return models.ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		profile := models.Profile{
			ID:          uuid.NewString(),
			Account:     account,
			LastUpdated: time.Now(),
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		created = &profile

		return s.Notifier.Emit(tx, models.NotifyProfileRegistered, account, map[string]any{
			"profile_id": profile.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎮 Profile registered: %s", account)
	return created, nil
}

// UpdateStats overwrites all stats fields atomically. Backend-authorized;
// fires a tier-upgrade notification when the derived tier strictly rises.
// The ledger does not stop a backend from lowering a level.
func (s *ProfileService) UpdateStats(account string, stats models.ProfileStats, deadline int64, sig []byte) (*models.Profile, error) {
	err := s.Auth.VerifyBackendSigned(account, models.NonceNamespaceStats, deadline, sig,
		func(nonce uint64) [32]byte {
			return s.Auth.StatsUpdateDigest(account, stats, nonce, deadline)
		})
	if err != nil {
		return nil, err
	}

	var updated *models.Profile
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("account = ?", account).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotRegistered
			}
			return err
		}

		oldTier := models.TierForLevel(profile.Level)

		profile.XP = stats.XP
		profile.Level = stats.Level
		profile.ProgressCount = stats.ProgressCount
		profile.AchievementCount = stats.AchievementCount
		profile.LastUpdated = time.Now()

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		updated = &profile

		if err := s.Notifier.Emit(tx, models.NotifyProfileStatsUpdated, account, map[string]any{
			"xp":                stats.XP,
			"level":             stats.Level,
			"progress_count":    stats.ProgressCount,
			"achievement_count": stats.AchievementCount,
		}); err != nil {
			return err
		}

		newTier := models.TierForLevel(stats.Level)
		if newTier > oldTier {
			log.Printf("🏆 Tier upgrade: %s %s → %s",
				account, models.TierName(oldTier), models.TierName(newTier))
			return s.Notifier.Emit(tx, models.NotifyProfileTierUpgraded, account, map[string]any{
				"old_tier": oldTier,
				"new_tier": newTier,
				"level":    stats.Level,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetProfile returns the profile with its derived tier.
func (s *ProfileService) GetProfile(account string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.Where("account = ?", account).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotRegistered
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &profile, nil
}

// Tier returns the derived tier for an account's current level.
func (s *ProfileService) Tier(account string) (int, error) {
	profile, err := s.GetProfile(account)
	if err != nil {
		return 0, err
	}
	return models.TierForLevel(profile.Level), nil
}
