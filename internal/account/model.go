package account

import (
	"time"

	"github.com/google/uuid"
)

// Roles accepted at signup. Admins may mutate the registry; viewers only read.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Account is a registered credential record. Accounts are never deleted and
// only the password could ever change (no update path is exposed).
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
