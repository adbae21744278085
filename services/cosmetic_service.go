package services

import (
	"errors"
	"log"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CosmeticService struct {
	DB       *gorm.DB
	Access   *AccessControlService
	Notifier *Notifier
}

func NewCosmeticService(db *gorm.DB, access *AccessControlService, notifier *Notifier) *CosmeticService {
	return &CosmeticService{DB: db, Access: access, Notifier: notifier}
}

// ItemInput carries the catalog fields for a new item. ImageHash/ImageURL
// come from the asset upload step.
type ItemInput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Rarity          string `json:"rarity"`
	ImageHash       string `json:"image_hash"`
	ImageURL        string `json:"image_url"`
	MaxSupply       int64  `json:"max_supply"`
	MinTierRequired int    `json:"min_tier_required"`
}

// CreateItem adds a catalog entry. Admin-only.
func (s *CosmeticService) CreateItem(caller string, in ItemInput) (*models.CosmeticItem, error) {
	if err := s.Access.RequireRole(models.RoleAdmin, caller); err != nil {
		return nil, err
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.ErrInvalidCategory
	}
	if !models.ValidRarity(in.Rarity) {
		return nil, models.ErrInvalidRarity
	}

	var created *models.CosmeticItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CosmeticItem
		err := tx.Where("id = ?", in.ID).First(&existing).Error
		if err == nil {
			return models.ErrItemExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := models.CosmeticItem{
			ID:              in.ID,
			Name:            in.Name,
			Slug:            slug.Make(in.Name),
			Category:        in.Category,
			Rarity:          in.Rarity,
			ImageHash:       in.ImageHash,
			ImageURL:        in.ImageURL,
			MaxSupply:       in.MaxSupply,
			MinTierRequired: in.MinTierRequired,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		created = &item

		return s.Notifier.Emit(tx, models.NotifyItemCreated, "", map[string]any{
			"item_id":    in.ID,
			"name":       in.Name,
			"category":   in.Category,
			"rarity":     in.Rarity,
			"image_hash": in.ImageHash,
			"max_supply": in.MaxSupply,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎨 Item created: %s (%s/%s)", in.ID, in.Category, in.Rarity)
	return created, nil
}

// MintItem issues quantity units of an item to an account, bounded by the
// item's max supply when nonzero. Admin-only.
func (s *CosmeticService) MintItem(caller, account, itemID string, quantity int64) error {
	if err := s.Access.RequireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	if quantity <= 0 {
		return models.ErrInvalidAmount
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.CosmeticItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrItemNotFound
			}
			return err
		}
		if item.MaxSupply > 0 && item.CurrentSupply+quantity > item.MaxSupply {
			return models.ErrMaxSupplyReached
		}
		item.CurrentSupply += quantity
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		if err := addOwnership(tx, account, itemID, quantity); err != nil {
			return err
		}

		return s.Notifier.Emit(tx, models.NotifyItemMinted, account, map[string]any{
			"item_id":        itemID,
			"quantity":       quantity,
			"current_supply": item.CurrentSupply,
		})
	})
}

// EquipItem points the account's category slot at the item. The account must
// own at least one unit and the item's stored category must match the slot.
// Tier gating on MinTierRequired is the caller's responsibility.
func (s *CosmeticService) EquipItem(account, category, itemID string) error {
	if !models.ValidCategory(category) {
		return models.ErrInvalidCategory
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.CosmeticItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrItemNotFound
			}
			return err
		}
		if item.Category != category {
			return models.ErrInvalidCategory
		}

		balance, err := ownershipBalance(tx, account, itemID)
		if err != nil {
			return err
		}
		if balance < 1 {
			return models.ErrItemNotOwned
		}

		var existing models.EquipSlot
		err = tx.Where("account = ? AND category = ?", account, category).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.EquipSlot{
				ID:       uuid.NewString(),
				Account:  account,
				Category: category,
				ItemID:   itemID,
			}).Error
		}
		if err != nil {
			return err
		}
		existing.ItemID = itemID
		return tx.Save(&existing).Error
	})
}

// UnequipItem clears the account's category slot.
func (s *CosmeticService) UnequipItem(account, category string) error {
	if !models.ValidCategory(category) {
		return models.ErrInvalidCategory
	}
	res := s.DB.Where("account = ? AND category = ?", account, category).
		Delete(&models.EquipSlot{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrItemNotEquipped
	}
	return nil
}

// BalanceOf returns the fungible quantity an account holds of an item.
func (s *CosmeticService) BalanceOf(account, itemID string) (int64, error) {
	return ownershipBalance(s.DB, account, itemID)
}

// ListOwned returns every holding with a positive quantity.
func (s *CosmeticService) ListOwned(account string) ([]models.ItemOwnership, error) {
	var holdings []models.ItemOwnership
	err := s.DB.Where("account = ? AND quantity > 0", account).
		Order("item_id ASC").
		Find(&holdings).Error
	return holdings, err
}

// EquippedItems returns the account's current slot pointers. Pointers may be
// stale for items the account has fully transferred out.
func (s *CosmeticService) EquippedItems(account string) ([]models.EquipSlot, error) {
	var slots []models.EquipSlot
	err := s.DB.Where("account = ?", account).Find(&slots).Error
	return slots, err
}

func (s *CosmeticService) GetItem(id string) (*models.CosmeticItem, error) {
	var item models.CosmeticItem
	err := s.DB.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns the full catalog.
func (s *CosmeticService) ListItems() ([]models.CosmeticItem, error) {
	var items []models.CosmeticItem
	err := s.DB.Order("created_at ASC").Find(&items).Error
	return items, err
}

// --- fungible ownership moves, shared with the marketplace ---

func ownershipBalance(tx *gorm.DB, account, itemID string) (int64, error) {
	var holding models.ItemOwnership
	err := tx.Where("account = ? AND item_id = ?", account, itemID).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return holding.Quantity, nil
}

func addOwnership(tx *gorm.DB, account, itemID string, quantity int64) error {
	var holding models.ItemOwnership
	err := tx.Where("account = ? AND item_id = ?", account, itemID).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.ItemOwnership{
			ID:       uuid.NewString(),
			Account:  account,
			ItemID:   itemID,
			Quantity: quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	holding.Quantity += quantity
	return tx.Save(&holding).Error
}

func removeOwnership(tx *gorm.DB, account, itemID string, quantity int64) error {
	var holding models.ItemOwnership
	err := tx.Where("account = ? AND item_id = ?", account, itemID).First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && holding.Quantity < quantity) {
		return models.ErrItemNotOwned
	}
	if err != nil {
		return err
	}
	holding.Quantity -= quantity
	return tx.Save(&holding).Error
}
