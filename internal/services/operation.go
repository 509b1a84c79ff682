package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adminbank/backend/internal/store"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownProcess = errors.New("invalid transfer type name")
	ErrInvalidPayload = errors.New("invalid data payload")
	ErrNonPositive    = errors.New("amount must be greater than 0")
)

// Amounts carry at most 18 fractional and 30 integer digits.
const (
	minAmountExponent      = -18
	maxAmountIntegerDigits = 30
)

const (
	ProcessTransfer = "transfer"
	ProcessWithdraw = "withdraw"
	ProcessDeposit  = "deposit"
	ProcessList     = "list"
)

// Operation is one of TransferOp, WithdrawOp, DepositOp or ListOp. The set
// is closed: only this package can add variants.
type Operation interface {
	Process() string
	check() error
}

type TransferOp struct {
	SenderEmail   string          `json:"senderEmail" validate:"required,email"`
	ReceiverEmail string          `json:"receiverEmail" validate:"required,email"`
	Amount        decimal.Decimal `json:"transferAmount"`
	Note          string          `json:"note" validate:"max=500"`
}

type WithdrawOp struct {
	UserEmail string          `json:"userEmail" validate:"required,email"`
	Amount    decimal.Decimal `json:"amount"`
}

type DepositOp struct {
	UserEmail string          `json:"userEmail" validate:"required,email"`
	Amount    decimal.Decimal `json:"amount"`
}

type ListOp struct {
	UserEmail string `json:"userEmail" validate:"required,email"`
	Order     string `json:"order" validate:"omitempty,oneof=asc desc"`
}

func (TransferOp) Process() string { return ProcessTransfer }
func (WithdrawOp) Process() string { return ProcessWithdraw }
func (DepositOp) Process() string  { return ProcessDeposit }
func (ListOp) Process() string     { return ProcessList }

func (op TransferOp) check() error { return positive("transferAmount", op.Amount) }
func (op WithdrawOp) check() error { return positive("amount", op.Amount) }
func (op DepositOp) check() error  { return positive("amount", op.Amount) }
func (ListOp) check() error        { return nil }

func positive(field string, amount decimal.Decimal) error {
	if !amountInRange(amount) {
		return fmt.Errorf("%w: %s", ErrAmountOutOfRange, field)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrNonPositive, field)
	}
	return nil
}

// amountInRange bounds scale and magnitude so balance arithmetic stays small.
func amountInRange(amount decimal.Decimal) bool {
	exp := int64(amount.Exponent())
	if exp < minAmountExponent {
		return false
	}
	return int64(amount.NumDigits())+exp <= maxAmountIntegerDigits
}

// SortOrder maps the request's order field onto the store ordering.
func (op ListOp) SortOrder() store.Order {
	return ParseOrder(op.Order)
}

func ParseOrder(order string) store.Order {
	if order == "desc" {
		return store.OrderDesc
	}
	return store.OrderAsc
}

// ParseOperation resolves a process name and its raw payload into a typed
// operation. It returns ErrUnknownProcess, ErrInvalidPayload, ErrNonPositive,
// ErrAmountOutOfRange, or the validator's ValidationErrors.
func ParseOperation(process string, data json.RawMessage, vh *ValidationHelper) (Operation, error) {
	var op Operation
	switch process {
	case ProcessTransfer:
		op = &TransferOp{}
	case ProcessWithdraw:
		op = &WithdrawOp{}
	case ProcessDeposit:
		op = &DepositOp{}
	case ProcessList:
		op = &ListOp{}
	default:
		return nil, ErrUnknownProcess
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: data is required", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := vh.ValidateStruct(op); err != nil {
		return nil, err
	}
	if err := op.check(); err != nil {
		return nil, err
	}

	return deref(op), nil
}

func deref(op Operation) Operation {
	switch v := op.(type) {
	case *TransferOp:
		return *v
	case *WithdrawOp:
		return *v
	case *DepositOp:
		return *v
	case *ListOp:
		return *v
	}
	return op
}
