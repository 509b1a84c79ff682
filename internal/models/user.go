package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an end-user monetary account owned by the admin that registered it.
type User struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name" example:"John Doe"`
	Email        string          `json:"email" db:"email" example:"user@example.com"`
	Balance      decimal.Decimal `json:"balance" db:"balance" example:"100.50"`
	AdminCode    string          `json:"adminCode" db:"admin_code"` // Owning admin, fixed at registration
	StateCode    string          `json:"stateCode" db:"state_code"`
	TownshipCode string          `json:"townshipCode" db:"township_code"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the balance view returned after a mutation.
type UserSummary struct {
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{Email: u.Email, Name: u.Name, Balance: u.Balance}
}
