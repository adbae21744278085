package models

import "time"

// Roles known to the access control registry. Admin administers all of them.
const (
	RoleAdmin         = "admin"
	RoleBackendSigner = "backend_signer"
	RoleEventManager  = "event_manager"
)

// KnownRoles lists every grantable role.
var KnownRoles = []string{RoleAdmin, RoleBackendSigner, RoleEventManager}

// RoleAssignment records that an account holds a role. Revoking deletes the
// row; it does not retroactively invalidate consumed nonces or settled state.
type RoleAssignment struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Role      string    `gorm:"uniqueIndex:idx_role_account;size:32;not null" json:"role"`
	Account   string    `gorm:"uniqueIndex:idx_role_account;size:64;not null" json:"account"`
	GrantedBy string    `gorm:"size:64" json:"granted_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func ValidRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}
