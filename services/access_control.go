package services

import (
	"errors"
	"fmt"
	"log"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessControlService is the single capability table every other component
// consults. Admin administers all roles.
type AccessControlService struct {
	DB       *gorm.DB
	Notifier *Notifier
}

func NewAccessControlService(db *gorm.DB, notifier *Notifier) *AccessControlService {
	return &AccessControlService{DB: db, Notifier: notifier}
}

// Bootstrap grants admin to the configured account on first start. Idempotent.
func (s *AccessControlService) Bootstrap(account string) error {
	if account == "" {
		return nil
	}
	if s.HasRole(models.RoleAdmin, account) {
		return nil
	}
	assignment := models.RoleAssignment{
		ID:        uuid.NewString(),
		Role:      models.RoleAdmin,
		Account:   account,
		GrantedBy: "bootstrap",
	}
	if err := s.DB.Create(&assignment).Error; err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Printf("✅ Bootstrap admin granted to %s", account)
	return nil
}

// roleHeld checks the role table through the caller's handle. Callers already
// inside a transaction pass their tx so the lookup does not need a second
// pool connection.
func (s *AccessControlService) roleHeld(tx *gorm.DB, role, account string) bool {
	var count int64
	tx.Model(&models.RoleAssignment{}).
		Where("role = ? AND account = ?", role, account).
		Count(&count)
	return count > 0
}

// HasRole is a pure lookup.
func (s *AccessControlService) HasRole(role, account string) bool {
	return s.roleHeld(s.DB, role, account)
}

// RequireRole returns ErrUnauthorized unless the account holds the role.
func (s *AccessControlService) RequireRole(role, account string) error {
	if !s.HasRole(role, account) {
		return models.ErrUnauthorized
	}
	return nil
}

// GrantRole gives account the role. Caller must hold admin. Granting an
// already-held role is a no-op.
func (s *AccessControlService) GrantRole(caller, role, account string) error {
	if !models.ValidRole(role) {
		return models.ErrUnknownRole
	}
	if err := s.RequireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.RoleAssignment
		err := tx.Where("role = ? AND account = ?", role, account).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		assignment := models.RoleAssignment{
			ID:        uuid.NewString(),
			Role:      role,
			Account:   account,
			GrantedBy: caller,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return s.Notifier.Emit(tx, models.NotifyRoleGranted, account, map[string]any{
			"role":       role,
			"granted_by": caller,
		})
	})
}

// RevokeRole removes the role from account. Caller must hold admin.
// Revoking does not invalidate already-consumed nonces or completed state.
func (s *AccessControlService) RevokeRole(caller, role, account string) error {
	if !models.ValidRole(role) {
		return models.ErrUnknownRole
	}
	if err := s.RequireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("role = ? AND account = ?", role, account).
			Delete(&models.RoleAssignment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return s.Notifier.Emit(tx, models.NotifyRoleRevoked, account, map[string]any{
			"role":       role,
			"revoked_by": caller,
		})
	})
}
