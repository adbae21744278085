package services

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"time"

	"player-rewards-system/models"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Typed payload identifiers. A payload signed for one operation can never
// verify against another operation's digest builder.
var (
	domainTypeHash   = sha256.Sum256([]byte("Domain(string name,string version,uint64 networkId,string endpointId)"))
	registerTypeHash = sha256.Sum256([]byte("Register(string account,uint64 nonce,uint64 deadline)"))
	statsTypeHash    = sha256.Sum256([]byte("StatsUpdate(string account,int64 xp,int64 level,int64 progressCount,int64 achievementCount,uint64 nonce,uint64 deadline)"))
	claimTypeHash    = sha256.Sum256([]byte("ClaimAchievement(string to,string eventId,int64 tier,string metadataHash,uint64 nonce,uint64 deadline)"))
)

// DomainIdentity binds every digest to this protocol, version, network and
// verifying endpoint.
type DomainIdentity struct {
	Name       string
	Version    string
	NetworkID  uint64
	EndpointID string
}

// DomainFromEnv loads the signing domain identity with sane defaults.
func DomainFromEnv() DomainIdentity {
	networkID := uint64(1)
	if raw := os.Getenv("NETWORK_ID"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			networkID = n
		}
	}
	d := DomainIdentity{
		Name:       os.Getenv("PROTOCOL_NAME"),
		Version:    os.Getenv("PROTOCOL_VERSION"),
		NetworkID:  networkID,
		EndpointID: os.Getenv("ENDPOINT_ID"),
	}
	if d.Name == "" {
		d.Name = "PlayerRewards"
	}
	if d.Version == "" {
		d.Version = "1"
	}
	if d.EndpointID == "" {
		d.EndpointID = "player-rewards-system"
	}
	return d
}

// AuthorizerService implements the shared verification routine: deadline
// check, typed digest, signer recovery, role/identity check, and nonce
// consumption. The nonce commits in its own transaction before any business
// rule runs, so a signature is burned even if business logic later rejects.
type AuthorizerService struct {
	DB     *gorm.DB
	Access *AccessControlService
	Domain DomainIdentity

	separator [32]byte
}

func NewAuthorizerService(db *gorm.DB, access *AccessControlService, domain DomainIdentity) *AuthorizerService {
	a := &AuthorizerService{DB: db, Access: access, Domain: domain}
	a.separator = a.buildSeparator()
	return a
}

func (a *AuthorizerService) buildSeparator() [32]byte {
	h := sha256.New()
	h.Write(domainTypeHash[:])
	h.Write(hashString(a.Domain.Name))
	h.Write(hashString(a.Domain.Version))
	h.Write(encodeUint64(a.Domain.NetworkID))
	h.Write(hashString(a.Domain.EndpointID))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashString(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func encodeInt64(v int64) []byte {
	return encodeUint64(uint64(v))
}

// digest combines the prefix, domain separator and struct hash.
func (a *AuthorizerService) digest(structHash [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{0x19, 0x01})
	h.Write(a.separator[:])
	h.Write(structHash[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// RegisterDigest builds the digest a relayed self-registration must sign.
func (a *AuthorizerService) RegisterDigest(account string, nonce uint64, deadline int64) [32]byte {
	h := sha256.New()
	h.Write(registerTypeHash[:])
	h.Write(hashString(account))
	h.Write(encodeUint64(nonce))
	h.Write(encodeInt64(deadline))
	var structHash [32]byte
	copy(structHash[:], h.Sum(nil))
	return a.digest(structHash)
}

// StatsUpdateDigest builds the digest a backend signer must sign to
// overwrite an account's stats.
func (a *AuthorizerService) StatsUpdateDigest(account string, stats models.ProfileStats, nonce uint64, deadline int64) [32]byte {
	h := sha256.New()
	h.Write(statsTypeHash[:])
	h.Write(hashString(account))
	h.Write(encodeInt64(stats.XP))
	h.Write(encodeInt64(int64(stats.Level)))
	h.Write(encodeInt64(stats.ProgressCount))
	h.Write(encodeInt64(stats.AchievementCount))
	h.Write(encodeUint64(nonce))
	h.Write(encodeInt64(deadline))
	var structHash [32]byte
	copy(structHash[:], h.Sum(nil))
	return a.digest(structHash)
}

// ClaimDigest builds the digest a backend signer must sign to award an
// achievement.
func (a *AuthorizerService) ClaimDigest(to, eventID string, tier int, metadataHash string, nonce uint64, deadline int64) [32]byte {
	h := sha256.New()
	h.Write(claimTypeHash[:])
	h.Write(hashString(to))
	h.Write(hashString(eventID))
	h.Write(encodeInt64(int64(tier)))
	h.Write(hashString(metadataHash))
	h.Write(encodeUint64(nonce))
	h.Write(encodeInt64(deadline))
	var structHash [32]byte
	copy(structHash[:], h.Sum(nil))
	return a.digest(structHash)
}

// AccountFromPubKey derives the account identifier for a public key.
func AccountFromPubKey(pub *secp256k1.PublicKey) string {
	sum := sha256.Sum256(pub.SerializeCompressed())
	return "0x" + hex.EncodeToString(sum[:20])
}

// RecoverAccount recovers the signing account from a 65-byte compact
// signature over the digest.
func RecoverAccount(digest [32]byte, sig []byte) (string, error) {
	pub, _, err := secpecdsa.RecoverCompact(sig, digest[:])
	if err != nil {
		return "", models.ErrInvalidSignature
	}
	return AccountFromPubKey(pub), nil
}

// NonceFor returns the nonce the next signature in the namespace must carry.
func (a *AuthorizerService) NonceFor(account, namespace string) (uint64, error) {
	var nonce models.SignerNonce
	err := a.DB.Where("account = ? AND namespace = ?", account, namespace).First(&nonce).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return nonce.Value, nil
}

// verify runs the shared routine. digestFn receives the account's current
// nonce so the digest binds to it; check validates the recovered signer
// through the same transaction, so role state is read consistently with the
// nonce and no second pool connection is taken. On success the nonce
// increments by exactly one and the transaction commits before the caller's
// business logic runs.
func (a *AuthorizerService) verify(account, namespace string, deadline int64, sig []byte,
	digestFn func(nonce uint64) [32]byte, check func(tx *gorm.DB, signer string) error) error {

	if time.Now().Unix() > deadline {
		return models.ErrSignatureExpired
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		var nonce models.SignerNonce
		err := tx.Where("account = ? AND namespace = ?", account, namespace).First(&nonce).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			nonce = models.SignerNonce{
				ID:        uuid.NewString(),
				Account:   account,
				Namespace: namespace,
				Value:     0,
			}
			if err := tx.Create(&nonce).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		signer, err := RecoverAccount(digestFn(nonce.Value), sig)
		if err != nil {
			return err
		}
		if err := check(tx, signer); err != nil {
			return err
		}

		nonce.Value++
		return tx.Save(&nonce).Error
	})
}

// VerifyBackendSigned requires the recovered signer to hold the backend
// signer role.
func (a *AuthorizerService) VerifyBackendSigned(account, namespace string, deadline int64, sig []byte,
	digestFn func(nonce uint64) [32]byte) error {

	return a.verify(account, namespace, deadline, sig, digestFn, func(tx *gorm.DB, signer string) error {
		if !a.Access.roleHeld(tx, models.RoleBackendSigner, signer) {
			return models.ErrInvalidSigner
		}
		return nil
	})
}

// VerifySelfSigned requires the recovered signer to be the subject account.
// Any relayer may submit the call.
func (a *AuthorizerService) VerifySelfSigned(account, namespace string, deadline int64, sig []byte,
	digestFn func(nonce uint64) [32]byte) error {

	return a.verify(account, namespace, deadline, sig, digestFn, func(_ *gorm.DB, signer string) error {
		if signer != account {
			return models.ErrInvalidSignature
		}
		return nil
	})
}

// DecodeSignature parses a hex-encoded 65-byte compact signature.
func DecodeSignature(raw string) ([]byte, error) {
	trimmed := raw
	if len(trimmed) >= 2 && (trimmed[:2] == "0x" || trimmed[:2] == "0X") {
		trimmed = trimmed[2:]
	}
	sig, err := hex.DecodeString(trimmed)
	if err != nil || len(sig) != 65 {
		return nil, models.ErrInvalidSignature
	}
	return sig, nil
}
