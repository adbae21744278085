package services

import (
	"errors"
	"log"
	"time"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementService struct {
	DB       *gorm.DB
	Auth     *AuthorizerService
	Notifier *Notifier
}

func NewAchievementService(db *gorm.DB, auth *AuthorizerService, notifier *Notifier) *AchievementService {
	return &AchievementService{DB: db, Auth: auth, Notifier: notifier}
}

// Claim writes an immutable achievement record. Backend-authorized. The
// nonce is consumed during verification, so a duplicate or bad-tier
// rejection still burns the signature.
func (s *AchievementService) Claim(to, eventID string, tier int, metadataHash string, deadline int64, sig []byte) (*models.Achievement, error) {
	err := s.Auth.VerifyBackendSigned(to, models.NonceNamespaceClaim, deadline, sig,
		func(nonce uint64) [32]byte {
			return s.Auth.ClaimDigest(to, eventID, tier, metadataHash, nonce, deadline)
		})
	if err != nil {
		return nil, err
	}

	if tier < 1 || tier > 5 {
		return nil, models.ErrInvalidTier
	}

	var created *models.Achievement
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Achievement{}).
			Where("account = ? AND event_id = ?", to, eventID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return models.ErrAlreadyHasAchievement
		}

		achievement := models.Achievement{
			ID:           uuid.NewString(),
			Account:      to,
			EventID:      eventID,
			Tier:         tier,
			MetadataHash: metadataHash,
			UnlockedAt:   time.Now(),
		}
		if err := tx.Create(&achievement).Error; err != nil {
			return err
		}
		created = &achievement

		// Keep the profile's counter in step when a profile exists.
		var profile models.Profile
		err := tx.Where("account = ?", to).First(&profile).Error
		if err == nil {
			profile.AchievementCount++
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return s.Notifier.Emit(tx, models.NotifyAchievementClaimed, to, map[string]any{
			"event_id":      eventID,
			"tier":          tier,
			"metadata_hash": metadataHash,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎖️ Achievement claimed: %s event=%s tier=%d", to, eventID, tier)
	return created, nil
}

// HasAchievement is a pure existence check on (account, eventID).
func (s *AchievementService) HasAchievement(account, eventID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Achievement{}).
		Where("account = ? AND event_id = ?", account, eventID).
		Count(&count).Error
	return count > 0, err
}

func (s *AchievementService) GetAchievement(account, eventID string) (*models.Achievement, error) {
	var achievement models.Achievement
	err := s.DB.Where("account = ? AND event_id = ?", account, eventID).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

// ListForAccount enumerates an account's achievements in insertion order.
func (s *AchievementService) ListForAccount(account string) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := s.DB.Where("account = ?", account).
		Order("created_at ASC").
		Find(&achievements).Error
	return achievements, err
}
