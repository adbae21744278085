package services

import (
	"testing"

	"player-rewards-system/models"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdmin = "0x00000000000000000000000000000000000admin"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.RoleAssignment{},
		&models.SignerNonce{},
		&models.Profile{},
		&models.Achievement{},
		&models.Event{},
		&models.EventReward{},
		&models.CosmeticItem{},
		&models.ItemOwnership{},
		&models.EquipSlot{},
		&models.Listing{},
		&models.Wallet{},
		&models.MarketplaceConfig{},
		&models.Notification{},
	))
	return db
}

type testEnv struct {
	DB           *gorm.DB
	Notifier     *Notifier
	Access       *AccessControlService
	Auth         *AuthorizerService
	Profiles     *ProfileService
	Achievements *AchievementService
	Events       *EventService
	Cosmetics    *CosmeticService
	Wallets      *WalletService
	Market       *MarketplaceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	notifier := NewNotifier(db)
	access := NewAccessControlService(db, notifier)
	auth := NewAuthorizerService(db, access, DomainIdentity{
		Name:       "PlayerRewards",
		Version:    "1",
		NetworkID:  1337,
		EndpointID: "test-endpoint",
	})
	env := &testEnv{
		DB:           db,
		Notifier:     notifier,
		Access:       access,
		Auth:         auth,
		Profiles:     NewProfileService(db, auth, notifier),
		Achievements: NewAchievementService(db, auth, notifier),
		Events:       NewEventService(db, access, notifier),
		Cosmetics:    NewCosmeticService(db, access, notifier),
		Wallets:      NewWalletService(db, access, notifier),
		Market:       NewMarketplaceService(db, access, notifier),
	}
	require.NoError(t, access.Bootstrap(testAdmin))
	return env
}

// newSigner returns a fresh keypair and its derived account.
func newSigner(t *testing.T) (*secp256k1.PrivateKey, string) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return priv, AccountFromPubKey(priv.PubKey())
}

func signDigest(priv *secp256k1.PrivateKey, digest [32]byte) []byte {
	return secpecdsa.SignCompact(priv, digest[:], true)
}

// grantBackendSigner registers a fresh key as a backend signer.
func grantBackendSigner(t *testing.T, env *testEnv) *secp256k1.PrivateKey {
	t.Helper()
	priv, account := newSigner(t)
	require.NoError(t, env.Access.GrantRole(testAdmin, models.RoleBackendSigner, account))
	return priv
}

// grantEventManager returns an account holding the event manager role.
func grantEventManager(t *testing.T, env *testEnv) string {
	t.Helper()
	_, account := newSigner(t)
	require.NoError(t, env.Access.GrantRole(testAdmin, models.RoleEventManager, account))
	return account
}

func notificationCount(t *testing.T, env *testEnv, kind string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.DB.Model(&models.Notification{}).
		Where("kind = ?", kind).Count(&count).Error)
	return count
}
