package services

import (
	"errors"
	"log"
	"time"

	"player-rewards-system/models"

	"gorm.io/gorm"
)

const (
	// FeeDenominator expresses fees in basis points.
	FeeDenominator = 10000
	// MaxFeeBps caps the platform fee at 10%.
	MaxFeeBps = 1000
	// DefaultFeeBps is the fee applied until an admin changes it.
	DefaultFeeBps = 500
)

type MarketplaceService struct {
	DB       *gorm.DB
	Access   *AccessControlService
	Notifier *Notifier
}

func NewMarketplaceService(db *gorm.DB, access *AccessControlService, notifier *Notifier) *MarketplaceService {
	return &MarketplaceService{DB: db, Access: access, Notifier: notifier}
}

// PurchaseReceipt summarizes one settled buy.
type PurchaseReceipt struct {
	ListingID      uint64               `json:"listing_id"`
	ItemID         string               `json:"item_id"`
	Amount         int64                `json:"amount"`
	TotalPrice     int64                `json:"total_price"`
	Fee            int64                `json:"fee"`
	SellerProceeds int64                `json:"seller_proceeds"`
	Refund         int64                `json:"refund"`
	Remaining      int64                `json:"remaining"`
	Status         models.ListingStatus `json:"status"`
}

func marketConfig(tx *gorm.DB) (*models.MarketplaceConfig, error) {
	var cfg models.MarketplaceConfig
	err := tx.Where("id = ?", 1).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.MarketplaceConfig{ID: 1, FeeBps: DefaultFeeBps}
		if err := tx.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CreateListing moves the listed units from the seller into escrow and opens
// an active listing with a monotonically increasing id.
func (s *MarketplaceService) CreateListing(seller, itemID string, amount, pricePerUnit int64) (*models.Listing, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if pricePerUnit <= 0 {
		return nil, models.ErrInvalidPrice
	}

	var created *models.Listing
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.CosmeticItem
		if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrItemNotFound
			}
			return err
		}

		if err := removeOwnership(tx, seller, itemID, amount); err != nil {
			return err
		}
		if err := addOwnership(tx, models.EscrowAccount, itemID, amount); err != nil {
			return err
		}

		listing := models.Listing{
			Seller:       seller,
			ItemID:       itemID,
			Amount:       amount,
			PricePerUnit: pricePerUnit,
			Status:       models.ListingActive,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}
		created = &listing

		return s.Notifier.Emit(tx, models.NotifyListingCreated, seller, map[string]any{
			"listing_id":     listing.ID,
			"item_id":        itemID,
			"amount":         amount,
			"price_per_unit": pricePerUnit,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🏪 Listing %d created: %s x%d @ %d by %s", created.ID, itemID, amount, pricePerUnit, seller)
	return created, nil
}

// CancelListing returns the remaining escrowed units to the seller and moves
// the listing to its terminal cancelled state. Seller-only.
func (s *MarketplaceService) CancelListing(caller string, id uint64) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("id = ?", id).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrListingNotFound
			}
			return err
		}
		if listing.Seller != caller {
			return models.ErrNotSeller
		}
		if listing.Status != models.ListingActive {
			return models.ErrListingNotActive
		}

		if err := removeOwnership(tx, models.EscrowAccount, listing.ItemID, listing.Amount); err != nil {
			return err
		}
		if err := addOwnership(tx, listing.Seller, listing.ItemID, listing.Amount); err != nil {
			return err
		}

		returned := listing.Amount
		listing.Amount = 0
		listing.Status = models.ListingCancelled
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		return s.Notifier.Emit(tx, models.NotifyListingCancelled, caller, map[string]any{
			"listing_id": id,
			"item_id":    listing.ItemID,
			"returned":   returned,
		})
	})
}

// BuyItem settles a purchase all-or-nothing: escrowed units move to the
// buyer, the seller is paid total minus fee, the fee accrues to the protocol
// balance, and any overpayment is refunded. A failed transfer aborts the
// whole operation with no partial settlement observable.
func (s *MarketplaceService) BuyItem(buyer string, id uint64, amount, payment int64) (*PurchaseReceipt, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var receipt *PurchaseReceipt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("id = ?", id).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrListingNotFound
			}
			return err
		}
		if listing.Status != models.ListingActive {
			return models.ErrListingNotActive
		}
		if amount > listing.Amount {
			return models.ErrInvalidAmount
		}

		cfg, err := marketConfig(tx)
		if err != nil {
			return err
		}

		totalPrice := listing.PricePerUnit * amount
		fee := totalPrice * cfg.FeeBps / FeeDenominator
		sellerProceeds := totalPrice - fee
		if payment < totalPrice {
			return models.ErrInsufficientPayment
		}
		refund := payment - totalPrice

		if err := debitWallet(tx, buyer, payment); err != nil {
			return err
		}
		if err := creditWallet(tx, listing.Seller, sellerProceeds); err != nil {
			return err
		}
		if refund > 0 {
			if err := creditWallet(tx, buyer, refund); err != nil {
				return err
			}
		}
		cfg.AccumulatedFees += fee
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}

		if err := removeOwnership(tx, models.EscrowAccount, listing.ItemID, amount); err != nil {
			return err
		}
		if err := addOwnership(tx, buyer, listing.ItemID, amount); err != nil {
			return err
		}

		listing.Amount -= amount
		if listing.Amount == 0 {
			now := time.Now()
			listing.Status = models.ListingSold
			listing.SoldAt = &now
		}
		if err := tx.Save(&listing).Error; err != nil {
			return err
		}

		receipt = &PurchaseReceipt{
			ListingID:      id,
			ItemID:         listing.ItemID,
			Amount:         amount,
			TotalPrice:     totalPrice,
			Fee:            fee,
			SellerProceeds: sellerProceeds,
			Refund:         refund,
			Remaining:      listing.Amount,
			Status:         listing.Status,
		}

		return s.Notifier.Emit(tx, models.NotifyListingSold, buyer, map[string]any{
			"listing_id":      id,
			"item_id":         listing.ItemID,
			"seller":          listing.Seller,
			"amount":          amount,
			"total_price":     totalPrice,
			"fee":             fee,
			"seller_proceeds": sellerProceeds,
			"remaining":       listing.Amount,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("💰 Listing %d: %s bought %d for %d (fee %d)", id, buyer, amount, receipt.TotalPrice, receipt.Fee)
	return receipt, nil
}

// SetPlatformFee updates the fee rate. Admin-only, capped at MaxFeeBps.
func (s *MarketplaceService) SetPlatformFee(caller string, bps int64) error {
	if err := s.Access.RequireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	if bps < 0 || bps > MaxFeeBps {
		return models.ErrFeeTooHigh
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, err := marketConfig(tx)
		if err != nil {
			return err
		}
		cfg.FeeBps = bps
		return tx.Save(cfg).Error
	})
}

// WithdrawFees zeroes the accumulated balance and pays it to the given
// account. Admin-only.
func (s *MarketplaceService) WithdrawFees(caller, to string) (int64, error) {
	if err := s.Access.RequireRole(models.RoleAdmin, caller); err != nil {
		return 0, err
	}

	var withdrawn int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cfg, err := marketConfig(tx)
		if err != nil {
			return err
		}
		withdrawn = cfg.AccumulatedFees
		if withdrawn == 0 {
			return nil
		}
		cfg.AccumulatedFees = 0
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
		if err := creditWallet(tx, to, withdrawn); err != nil {
			return err
		}
		return s.Notifier.Emit(tx, models.NotifyFeesWithdrawn, to, map[string]any{
			"amount":       withdrawn,
			"withdrawn_by": caller,
		})
	})
	if err != nil {
		return 0, err
	}
	return withdrawn, nil
}

// PlatformFee returns the current fee rate and accumulated balance.
func (s *MarketplaceService) PlatformFee() (bps int64, accumulated int64, err error) {
	cfg, err := marketConfig(s.DB)
	if err != nil {
		return 0, 0, err
	}
	return cfg.FeeBps, cfg.AccumulatedFees, nil
}

func (s *MarketplaceService) GetListing(id uint64) (*models.Listing, error) {
	var listing models.Listing
	err := s.DB.Where("id = ?", id).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (s *MarketplaceService) ListingsByItem(itemID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.DB.Where("item_id = ?", itemID).Order("id ASC").Find(&listings).Error
	return listings, err
}

func (s *MarketplaceService) ListingsBySeller(seller string) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.DB.Where("seller = ?", seller).Order("id ASC").Find(&listings).Error
	return listings, err
}

func (s *MarketplaceService) ActiveListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := s.DB.Where("status = ?", models.ListingActive).Order("id ASC").Find(&listings).Error
	return listings, err
}
