package services

import (
	"testing"

	"player-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marketFixture mints stock items to a seller and funds a buyer.
func marketFixture(t *testing.T, env *testEnv, sellerStock, buyerFunds int64) (seller, buyer string) {
	t.Helper()
	_, seller = newSigner(t)
	_, buyer = newSigner(t)

	in := ItemInput{ID: "sword-1", Name: "Frost Sword", Category: models.CategoryWeapon, Rarity: models.RarityEpic}
	_, err := env.Cosmetics.CreateItem(testAdmin, in)
	require.NoError(t, err)
	require.NoError(t, env.Cosmetics.MintItem(testAdmin, seller, "sword-1", sellerStock))
	if buyerFunds > 0 {
		require.NoError(t, env.Wallets.Credit(testAdmin, buyer, buyerFunds))
	}
	return seller, buyer
}

func TestCreateListingEscrowsUnits(t *testing.T) {
	env := newTestEnv(t)
	seller, _ := marketFixture(t, env, 10, 0)

	listing, err := env.Market.CreateListing(seller, "sword-1", 4, 25)
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, listing.Status)
	assert.Equal(t, int64(4), listing.Amount)

	sellerBal, err := env.Cosmetics.BalanceOf(seller, "sword-1")
	require.NoError(t, err)
	escrowBal, err := env.Cosmetics.BalanceOf(models.EscrowAccount, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), sellerBal)
	assert.Equal(t, int64(4), escrowBal)
}

func TestCreateListingValidation(t *testing.T) {
	env := newTestEnv(t)
	seller, _ := marketFixture(t, env, 2, 0)

	_, err := env.Market.CreateListing(seller, "sword-1", 0, 25)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = env.Market.CreateListing(seller, "sword-1", 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidPrice)

	_, err = env.Market.CreateListing(seller, "missing", 1, 25)
	assert.ErrorIs(t, err, models.ErrItemNotFound)

	// More units than owned.
	_, err = env.Market.CreateListing(seller, "sword-1", 3, 25)
	assert.ErrorIs(t, err, models.ErrItemNotOwned)

	// A failed listing must not have escrowed anything.
	escrowBal, err := env.Cosmetics.BalanceOf(models.EscrowAccount, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), escrowBal)
}

// Scenario: 5 units listed at 100 each, buyer takes 2 paying exactly 200.
// With the default 5% fee the seller nets 190, 10 accrues to the platform,
// and the listing stays active with 3 units left.
func TestPartialPurchaseSettlement(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 5, 200)

	listing, err := env.Market.CreateListing(seller, "sword-1", 5, 100)
	require.NoError(t, err)

	receipt, err := env.Market.BuyItem(buyer, listing.ID, 2, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), receipt.TotalPrice)
	assert.Equal(t, int64(10), receipt.Fee) // 200 * 500 / 10000
	assert.Equal(t, int64(190), receipt.SellerProceeds)
	assert.Equal(t, int64(0), receipt.Refund)
	assert.Equal(t, int64(3), receipt.Remaining)
	assert.Equal(t, models.ListingActive, receipt.Status)

	buyerItems, err := env.Cosmetics.BalanceOf(buyer, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), buyerItems)

	sellerFunds, err := env.Wallets.BalanceOf(seller)
	require.NoError(t, err)
	buyerFunds, err := env.Wallets.BalanceOf(buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(190), sellerFunds)
	assert.Equal(t, int64(0), buyerFunds)

	_, accumulated, err := env.Market.PlatformFee()
	require.NoError(t, err)
	assert.Equal(t, int64(10), accumulated)

	assert.Equal(t, int64(1), notificationCount(t, env, models.NotifyListingSold))
}

func TestConservationAcrossSettlement(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 8, 1000)

	listing, err := env.Market.CreateListing(seller, "sword-1", 8, 50)
	require.NoError(t, err)

	itemTotal := func() int64 {
		var total int64
		for _, account := range []string{seller, buyer, models.EscrowAccount} {
			bal, err := env.Cosmetics.BalanceOf(account, "sword-1")
			require.NoError(t, err)
			total += bal
		}
		return total
	}
	fundsTotal := func() int64 {
		var total int64
		for _, account := range []string{seller, buyer} {
			bal, err := env.Wallets.BalanceOf(account)
			require.NoError(t, err)
			total += bal
		}
		_, accumulated, err := env.Market.PlatformFee()
		require.NoError(t, err)
		return total + accumulated
	}

	require.Equal(t, int64(8), itemTotal())
	require.Equal(t, int64(1000), fundsTotal())

	for _, amount := range []int64{3, 2, 3} {
		_, err := env.Market.BuyItem(buyer, listing.ID, amount, amount*50)
		require.NoError(t, err)
		assert.Equal(t, int64(8), itemTotal())
		assert.Equal(t, int64(1000), fundsTotal())
	}

	final, err := env.Market.GetListing(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingSold, final.Status)
	assert.NotNil(t, final.SoldAt)
	assert.Equal(t, int64(0), final.Amount)

	// Sold listings reject further purchases.
	_, err = env.Market.BuyItem(buyer, listing.ID, 1, 50)
	assert.ErrorIs(t, err, models.ErrListingNotActive)
}

func TestOverpaymentIsRefunded(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 1, 500)
	_ = seller

	listing, err := env.Market.CreateListing(seller, "sword-1", 1, 100)
	require.NoError(t, err)

	receipt, err := env.Market.BuyItem(buyer, listing.ID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(400), receipt.Refund)

	buyerFunds, err := env.Wallets.BalanceOf(buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(400), buyerFunds)
}

func TestInsufficientPaymentAndFunds(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 2, 100)

	listing, err := env.Market.CreateListing(seller, "sword-1", 2, 100)
	require.NoError(t, err)

	// Declared payment below the total price.
	_, err = env.Market.BuyItem(buyer, listing.ID, 2, 150)
	assert.ErrorIs(t, err, models.ErrInsufficientPayment)

	// Payment declared but the wallet cannot cover it.
	_, err = env.Market.BuyItem(buyer, listing.ID, 2, 200)
	assert.ErrorIs(t, err, models.ErrTransferFailed)

	// Buying more units than the listing holds.
	_, err = env.Market.BuyItem(buyer, listing.ID, 3, 300)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	// Nothing settled: balances and escrow are untouched.
	buyerItems, err := env.Cosmetics.BalanceOf(buyer, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), buyerItems)
	buyerFunds, err := env.Wallets.BalanceOf(buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(100), buyerFunds)
	escrowBal, err := env.Cosmetics.BalanceOf(models.EscrowAccount, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), escrowBal)
}

func TestCancelListingReturnsEscrow(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 5, 100)

	listing, err := env.Market.CreateListing(seller, "sword-1", 5, 10)
	require.NoError(t, err)

	// Partial sale first, then cancel the remainder.
	_, err = env.Market.BuyItem(buyer, listing.ID, 2, 20)
	require.NoError(t, err)

	assert.ErrorIs(t, env.Market.CancelListing(buyer, listing.ID), models.ErrNotSeller)
	require.NoError(t, env.Market.CancelListing(seller, listing.ID))

	sellerBal, err := env.Cosmetics.BalanceOf(seller, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), sellerBal)
	escrowBal, err := env.Cosmetics.BalanceOf(models.EscrowAccount, "sword-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), escrowBal)

	cancelled, err := env.Market.GetListing(listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingCancelled, cancelled.Status)
	assert.Equal(t, int64(0), cancelled.Amount)

	// Terminal states are sticky.
	assert.ErrorIs(t, env.Market.CancelListing(seller, listing.ID), models.ErrListingNotActive)
	_, err = env.Market.BuyItem(buyer, listing.ID, 1, 10)
	assert.ErrorIs(t, err, models.ErrListingNotActive)

	assert.ErrorIs(t, env.Market.CancelListing(seller, 9999), models.ErrListingNotFound)
}

func TestPlatformFeeAdministration(t *testing.T) {
	env := newTestEnv(t)
	_, stranger := newSigner(t)

	bps, accumulated, err := env.Market.PlatformFee()
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultFeeBps), bps)
	assert.Equal(t, int64(0), accumulated)

	assert.ErrorIs(t, env.Market.SetPlatformFee(stranger, 100), models.ErrUnauthorized)
	assert.ErrorIs(t, env.Market.SetPlatformFee(testAdmin, MaxFeeBps+1), models.ErrFeeTooHigh)
	assert.ErrorIs(t, env.Market.SetPlatformFee(testAdmin, -1), models.ErrFeeTooHigh)

	require.NoError(t, env.Market.SetPlatformFee(testAdmin, 0))
	bps, _, err = env.Market.PlatformFee()
	require.NoError(t, err)
	assert.Equal(t, int64(0), bps)

	require.NoError(t, env.Market.SetPlatformFee(testAdmin, MaxFeeBps))
}

func TestZeroFeePassesFullPrice(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 1, 100)
	require.NoError(t, env.Market.SetPlatformFee(testAdmin, 0))

	listing, err := env.Market.CreateListing(seller, "sword-1", 1, 100)
	require.NoError(t, err)
	receipt, err := env.Market.BuyItem(buyer, listing.ID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), receipt.Fee)
	assert.Equal(t, int64(100), receipt.SellerProceeds)
}

func TestWithdrawFees(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 2, 400)
	_, treasury := newSigner(t)
	_, stranger := newSigner(t)

	listing, err := env.Market.CreateListing(seller, "sword-1", 2, 100)
	require.NoError(t, err)
	_, err = env.Market.BuyItem(buyer, listing.ID, 2, 200)
	require.NoError(t, err)

	_, err = env.Market.WithdrawFees(stranger, treasury)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	withdrawn, err := env.Market.WithdrawFees(testAdmin, treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(10), withdrawn)

	treasuryFunds, err := env.Wallets.BalanceOf(treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(10), treasuryFunds)

	_, accumulated, err := env.Market.PlatformFee()
	require.NoError(t, err)
	assert.Equal(t, int64(0), accumulated)

	// Withdrawing an empty balance is a no-op.
	withdrawn, err = env.Market.WithdrawFees(testAdmin, treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(0), withdrawn)
	assert.Equal(t, int64(1), notificationCount(t, env, models.NotifyFeesWithdrawn))
}

func TestWalletCredit(t *testing.T) {
	env := newTestEnv(t)
	_, stranger := newSigner(t)
	_, account := newSigner(t)

	assert.ErrorIs(t, env.Wallets.Credit(stranger, account, 100), models.ErrUnauthorized)
	assert.ErrorIs(t, env.Wallets.Credit(testAdmin, account, 0), models.ErrInvalidAmount)
	assert.ErrorIs(t, env.Wallets.Credit(testAdmin, account, -5), models.ErrInvalidAmount)

	require.NoError(t, env.Wallets.Credit(testAdmin, account, 100))
	require.NoError(t, env.Wallets.Credit(testAdmin, account, 50))

	balance, err := env.Wallets.BalanceOf(account)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	assert.Equal(t, int64(2), notificationCount(t, env, models.NotifyWalletCredited))
}

func TestListingViews(t *testing.T) {
	env := newTestEnv(t)
	seller, buyer := marketFixture(t, env, 6, 100)

	first, err := env.Market.CreateListing(seller, "sword-1", 2, 10)
	require.NoError(t, err)
	second, err := env.Market.CreateListing(seller, "sword-1", 2, 12)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	_, err = env.Market.BuyItem(buyer, first.ID, 2, 20)
	require.NoError(t, err)

	active, err := env.Market.ActiveListings()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	bySeller, err := env.Market.ListingsBySeller(seller)
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)

	byItem, err := env.Market.ListingsByItem("sword-1")
	require.NoError(t, err)
	assert.Len(t, byItem, 2)

	_, err = env.Market.GetListing(9999)
	assert.ErrorIs(t, err, models.ErrListingNotFound)
}
