package services

import (
	"errors"

	"player-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WalletService is the funding side of marketplace settlement: deposits are
// mirrored in by an admin-gated credit, purchases debit and credit balances
// inside the marketplace transaction.
type WalletService struct {
	DB       *gorm.DB
	Access   *AccessControlService
	Notifier *Notifier
}

func NewWalletService(db *gorm.DB, access *AccessControlService, notifier *Notifier) *WalletService {
	return &WalletService{DB: db, Access: access, Notifier: notifier}
}

// Credit mirrors an external deposit into the account's balance. Admin-only.
func (s *WalletService) Credit(caller, account string, amount int64) error {
	if err := s.Access.RequireRole(models.RoleAdmin, caller); err != nil {
		return err
	}
	if amount <= 0 {
		return models.ErrInvalidAmount
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := creditWallet(tx, account, amount); err != nil {
			return err
		}
		return s.Notifier.Emit(tx, models.NotifyWalletCredited, account, map[string]any{
			"amount":      amount,
			"credited_by": caller,
		})
	})
}

func (s *WalletService) BalanceOf(account string) (int64, error) {
	return walletBalance(s.DB, account)
}

// --- balance moves, shared with the marketplace ---

func walletBalance(tx *gorm.DB, account string) (int64, error) {
	var wallet models.Wallet
	err := tx.Where("account = ?", account).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

func creditWallet(tx *gorm.DB, account string, amount int64) error {
	var wallet models.Wallet
	err := tx.Where("account = ?", account).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.Wallet{
			ID:      uuid.NewString(),
			Account: account,
			Balance: amount,
		}).Error
	}
	if err != nil {
		return err
	}
	wallet.Balance += amount
	return tx.Save(&wallet).Error
}

// debitWallet fails with ErrTransferFailed when the balance cannot cover the
// amount, aborting the enclosing transaction.
func debitWallet(tx *gorm.DB, account string, amount int64) error {
	var wallet models.Wallet
	err := tx.Where("account = ?", account).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && wallet.Balance < amount) {
		return models.ErrTransferFailed
	}
	if err != nil {
		return err
	}
	wallet.Balance -= amount
	return tx.Save(&wallet).Error
}
