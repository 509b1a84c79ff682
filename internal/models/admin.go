package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege level carried in an admin session.
type Role string

const (
	RoleStandard Role = "standard"
	RoleSuper    Role = "super"
)

func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleSuper
}

// Admin represents an operator account. Admins are never deleted; they move
// between active and deactivated.
type Admin struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Code           string    `json:"adminCode" db:"code" example:"4F1C9A0B2D7E"` // Public, immutable admin code
	Name           string    `json:"name" db:"name" example:"Jane Operator"`
	CredentialHash string    `json:"-" db:"credential_hash"`
	Role           Role      `json:"role" db:"role" example:"standard"`
	Deactivated    bool      `json:"isDeactivated" db:"is_deactivated"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

func (a *Admin) Active() bool {
	return !a.Deactivated
}
