package services

import (
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"player-rewards-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfSignedHappyPath(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	sig := signDigest(priv, env.Auth.RegisterDigest(account, 0, deadline))
	err := env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.RegisterDigest(account, nonce, deadline)
		})
	require.NoError(t, err)

	nonce, err := env.Auth.NonceFor(account, models.NonceNamespaceRegister)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestReplayIsRejected(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	sig := signDigest(priv, env.Auth.RegisterDigest(account, 0, deadline))
	digestFn := func(nonce uint64) [32]byte {
		return env.Auth.RegisterDigest(account, nonce, deadline)
	}

	require.NoError(t, env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig, digestFn))

	// The identical bytes must never verify again: the digest now binds to
	// nonce 1, so recovery yields a different (or no) signer.
	err := env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig, digestFn)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidSignature)

	// The failed replay must not burn another nonce.
	nonce, err := env.Auth.NonceFor(account, models.NonceNamespaceRegister)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestExpiredDeadline(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	deadline := time.Now().Add(-time.Minute).Unix()

	sig := signDigest(priv, env.Auth.RegisterDigest(account, 0, deadline))
	err := env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.RegisterDigest(account, nonce, deadline)
		})
	assert.ErrorIs(t, err, models.ErrSignatureExpired)
}

func TestSelfSignedRejectsOtherSigner(t *testing.T) {
	env := newTestEnv(t)
	otherPriv, _ := newSigner(t)
	_, subject := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	// A third party signs the subject's registration payload.
	sig := signDigest(otherPriv, env.Auth.RegisterDigest(subject, 0, deadline))
	err := env.Auth.VerifySelfSigned(subject, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.RegisterDigest(subject, nonce, deadline)
		})
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
}

func TestBackendSignedHappyPath(t *testing.T) {
	env := newTestEnv(t)
	backend := grantBackendSigner(t, env)
	_, subject := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()
	stats := models.ProfileStats{XP: 10, Level: 1}

	// The test pool holds a single connection, so the role lookup must
	// resolve through the verification transaction itself.
	sig := signDigest(backend, env.Auth.StatsUpdateDigest(subject, stats, 0, deadline))
	require.NoError(t, env.Auth.VerifyBackendSigned(subject, models.NonceNamespaceStats, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.StatsUpdateDigest(subject, stats, nonce, deadline)
		}))

	nonce, err := env.Auth.NonceFor(subject, models.NonceNamespaceStats)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestBackendSignedRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	priv, _ := newSigner(t) // never granted backend_signer
	_, subject := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()
	stats := models.ProfileStats{XP: 100, Level: 3}

	sig := signDigest(priv, env.Auth.StatsUpdateDigest(subject, stats, 0, deadline))
	err := env.Auth.VerifyBackendSigned(subject, models.NonceNamespaceStats, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.StatsUpdateDigest(subject, stats, nonce, deadline)
		})
	assert.ErrorIs(t, err, models.ErrInvalidSigner)
}

func TestNonceNamespacesAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	sig := signDigest(priv, env.Auth.RegisterDigest(account, 0, deadline))
	require.NoError(t, env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.RegisterDigest(account, nonce, deadline)
		}))

	registerNonce, err := env.Auth.NonceFor(account, models.NonceNamespaceRegister)
	require.NoError(t, err)
	statsNonce, err := env.Auth.NonceFor(account, models.NonceNamespaceStats)
	require.NoError(t, err)
	claimNonce, err := env.Auth.NonceFor(account, models.NonceNamespaceClaim)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), registerNonce)
	assert.Equal(t, uint64(0), statsNonce)
	assert.Equal(t, uint64(0), claimNonce)
}

func TestDigestsAreDomainSeparated(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	// A register signature must never verify against the stats digest
	// builder, even for the same account, nonce and deadline.
	sig := signDigest(priv, env.Auth.RegisterDigest(account, 0, deadline))
	err := env.Auth.VerifySelfSigned(account, models.NonceNamespaceStats, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.StatsUpdateDigest(account, models.ProfileStats{}, nonce, deadline)
		})
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
}

func TestDifferentDomainIdentityRejects(t *testing.T) {
	env := newTestEnv(t)
	other := NewAuthorizerService(env.DB, env.Access, DomainIdentity{
		Name:       "PlayerRewards",
		Version:    "1",
		NetworkID:  9999, // different network
		EndpointID: "test-endpoint",
	})
	priv, account := newSigner(t)
	deadline := time.Now().Add(time.Hour).Unix()

	sig := signDigest(priv, other.RegisterDigest(account, 0, deadline))
	err := env.Auth.VerifySelfSigned(account, models.NonceNamespaceRegister, deadline, sig,
		func(nonce uint64) [32]byte {
			return env.Auth.RegisterDigest(account, nonce, deadline)
		})
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
}

func TestDecodeSignature(t *testing.T) {
	env := newTestEnv(t)
	priv, account := newSigner(t)
	digest := env.Auth.RegisterDigest(account, 0, 0)
	raw := signDigest(priv, digest)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain hex", hex.EncodeToString(raw), false},
		{"0x prefix", "0x" + hex.EncodeToString(raw), false},
		{"not hex", "zzzz", true},
		{"wrong length", hex.EncodeToString(raw[:32]), true},
		{"empty", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig, err := DecodeSignature(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, raw, sig)
		})
	}
}

func TestRecoverAccountRejectsGarbage(t *testing.T) {
	var digest [32]byte
	_, err := RecoverAccount(digest, []byte{1, 2, 3})
	assert.True(t, errors.Is(err, models.ErrInvalidSignature))
}
