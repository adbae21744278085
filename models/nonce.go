package models

import "time"

// Nonce namespaces. Each operation kind consumes from its own counter so a
// signature for one operation can never replay against another.
const (
	NonceNamespaceRegister = "register"
	NonceNamespaceStats    = "statsUpdate"
	NonceNamespaceClaim    = "claim"
)

// SignerNonce is a per-account, per-namespace monotonic counter. Value is the
// nonce the next accepted signature must carry; it increments by exactly one
// per accepted signature.
type SignerNonce struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Account   string    `gorm:"uniqueIndex:idx_nonce_key;size:64;not null" json:"account"`
	Namespace string    `gorm:"uniqueIndex:idx_nonce_key;size:32;not null" json:"namespace"`
	Value     uint64    `gorm:"default:0" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
