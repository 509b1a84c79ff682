package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTransfer TransactionType = "transfer"
	TransactionWithdraw TransactionType = "withdraw"
	TransactionDeposit  TransactionType = "deposit"
)

// Transaction is the immutable audit record of a committed balance mutation.
// SenderID is null for deposits and ReceiverID is null for withdrawals.
type Transaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Type       TransactionType `json:"type" db:"type" example:"transfer"`
	SenderID   uuid.NullUUID   `json:"senderId" db:"sender_id"`
	ReceiverID uuid.NullUUID   `json:"receiverId" db:"receiver_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount" example:"25.00"`
	Note       string          `json:"note,omitempty" db:"note"`
	AdminCode  string          `json:"adminCode" db:"admin_code"` // Performing admin
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// TransferResult is returned by a committed transfer.
type TransferResult struct {
	Sender      UserSummary `json:"sender"`
	Receiver    UserSummary `json:"receiver"`
	Transaction Transaction `json:"transaction"`
}

// BalanceResult is returned by a committed withdraw or deposit.
type BalanceResult struct {
	User        UserSummary `json:"user"`
	Transaction Transaction `json:"transaction"`
}
