package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adminbank/backend/internal/audit"
	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService executes balance mutations and user registration on
// behalf of an acting admin. Each mutation authorizes, checks invariants and
// writes its audit record inside one store transaction.
type TransactionService struct {
	store store.Store
	audit audit.Logger
	now   func() time.Time
}

func NewTransactionService(st store.Store, auditLogger audit.Logger) *TransactionService {
	return &TransactionService{
		store: st,
		audit: auditLogger,
		now:   time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// authorize checks that the acting admin exists and is active and, when
// ownerCode is set, that it registered the target user.
func authorize(ctx context.Context, tx store.Tx, actingCode, ownerCode string) (*models.Admin, error) {
	admin, err := tx.AdminByCode(ctx, actingCode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	if admin.Deactivated {
		return nil, ErrAccessDenied
	}
	if ownerCode != "" && ownerCode != admin.Code {
		return nil, ErrAccessDenied
	}
	return admin, nil
}

func (ts *TransactionService) fail(operation, actingCode string, err, kind error) error {
	if IsBusinessError(err) {
		logger.Log.Info("operation rejected",
			zap.String("operation", operation), zap.String("admin_code", actingCode), zap.Error(err))
		return err
	}
	ts.audit.LogError(operation, actingCode, err)
	return fmt.Errorf("%w: %w", kind, err)
}

func (ts *TransactionService) newRecord(kind models.TransactionType, amount decimal.Decimal, note, actingCode string, at time.Time) *models.Transaction {
	return &models.Transaction{
		ID:        uuid.New(),
		Type:      kind,
		Amount:    amount,
		Note:      note,
		AdminCode: actingCode,
		CreatedAt: at,
	}
}

func present(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

// Transfer moves amount from sender to receiver. The acting admin must own
// the sender.
func (ts *TransactionService) Transfer(ctx context.Context, senderEmail, receiverEmail string, amount decimal.Decimal, note, actingCode string) (*models.TransferResult, error) {
	senderEmail, receiverEmail = normalizeEmail(senderEmail), normalizeEmail(receiverEmail)
	if senderEmail == receiverEmail {
		return nil, ts.fail(ProcessTransfer, actingCode, ErrSameUser, ErrStoreFailure)
	}
	if !amountInRange(amount) {
		return nil, ts.fail(ProcessTransfer, actingCode, ErrAmountOutOfRange, ErrStoreFailure)
	}

	var result *models.TransferResult
	err := ts.store.InTx(ctx, func(tx store.Tx) error {
		users, err := tx.LockUsers(ctx, senderEmail, receiverEmail)
		if err != nil {
			return err
		}
		sender, ok := users[senderEmail]
		if !ok {
			return ErrSenderNotFound
		}
		receiver, ok := users[receiverEmail]
		if !ok {
			return ErrReceiverNotFound
		}

		if _, err := authorize(ctx, tx, actingCode, sender.AdminCode); err != nil {
			return err
		}

		if !amount.IsPositive() || amount.GreaterThan(sender.Balance) {
			return ErrInsufficientAmount
		}

		at := ts.now()
		sender.Balance = sender.Balance.Sub(amount)
		receiver.Balance = receiver.Balance.Add(amount)
		if err := tx.UpdateBalance(ctx, sender.ID, sender.Balance, at); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, receiver.ID, receiver.Balance, at); err != nil {
			return err
		}

		record := ts.newRecord(models.TransactionTransfer, amount, note, actingCode, at)
		record.SenderID = present(sender.ID)
		record.ReceiverID = present(receiver.ID)
		if err := tx.InsertTransaction(ctx, record); err != nil {
			return err
		}

		result = &models.TransferResult{
			Sender:      sender.Summary(),
			Receiver:    receiver.Summary(),
			Transaction: *record,
		}
		return nil
	})
	if err != nil {
		return nil, ts.fail(ProcessTransfer, actingCode, err, ErrStoreFailure)
	}

	ts.audit.LogTransaction(&result.Transaction)
	return result, nil
}

// Withdraw decrements a user's balance.
func (ts *TransactionService) Withdraw(ctx context.Context, userEmail string, amount decimal.Decimal, actingCode string) (*models.BalanceResult, error) {
	result, err := ts.adjust(ctx, models.TransactionWithdraw, normalizeEmail(userEmail), amount, actingCode)
	if err != nil {
		return nil, ts.fail(ProcessWithdraw, actingCode, err, ErrWithdraw)
	}
	return result, nil
}

// Deposit increments a user's balance. There is no upper bound.
func (ts *TransactionService) Deposit(ctx context.Context, userEmail string, amount decimal.Decimal, actingCode string) (*models.BalanceResult, error) {
	result, err := ts.adjust(ctx, models.TransactionDeposit, normalizeEmail(userEmail), amount, actingCode)
	if err != nil {
		return nil, ts.fail(ProcessDeposit, actingCode, err, ErrDeposit)
	}
	return result, nil
}

func (ts *TransactionService) adjust(ctx context.Context, kind models.TransactionType, email string, amount decimal.Decimal, actingCode string) (*models.BalanceResult, error) {
	if !amountInRange(amount) {
		return nil, ErrAmountOutOfRange
	}

	var result *models.BalanceResult
	err := ts.store.InTx(ctx, func(tx store.Tx) error {
		users, err := tx.LockUsers(ctx, email)
		if err != nil {
			return err
		}
		user, ok := users[email]
		if !ok {
			return ErrUserNotFound
		}

		if _, err := authorize(ctx, tx, actingCode, user.AdminCode); err != nil {
			return err
		}

		if !amount.IsPositive() {
			return ErrInsufficientAmount
		}

		at := ts.now()
		record := ts.newRecord(kind, amount, "", actingCode, at)
		if kind == models.TransactionWithdraw {
			if amount.GreaterThan(user.Balance) {
				return ErrInsufficientAmount
			}
			user.Balance = user.Balance.Sub(amount)
			record.SenderID = present(user.ID)
		} else {
			user.Balance = user.Balance.Add(amount)
			record.ReceiverID = present(user.ID)
		}

		if err := tx.UpdateBalance(ctx, user.ID, user.Balance, at); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, record); err != nil {
			return err
		}

		result = &models.BalanceResult{User: user.Summary(), Transaction: *record}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ts.audit.LogTransaction(&result.Transaction)
	return result, nil
}

// RegisterUser creates a zero-balance user owned by the acting admin.
func (ts *TransactionService) RegisterUser(ctx context.Context, name, email, stateCode, townshipCode, actingCode string) (*models.User, error) {
	email = normalizeEmail(email)

	var user *models.User
	err := ts.store.InTx(ctx, func(tx store.Tx) error {
		admin, err := authorize(ctx, tx, actingCode, "")
		if err != nil {
			return err
		}

		existing, err := tx.LockUsers(ctx, email)
		if err != nil {
			return err
		}
		if _, ok := existing[email]; ok {
			return ErrUserAlreadyCreated
		}

		at := ts.now()
		user = &models.User{
			ID:           uuid.New(),
			Name:         name,
			Email:        email,
			Balance:      decimal.Zero,
			AdminCode:    admin.Code,
			StateCode:    stateCode,
			TownshipCode: townshipCode,
			CreatedAt:    at,
			UpdatedAt:    at,
		}
		err = tx.InsertUser(ctx, user)
		if errors.Is(err, store.ErrConflict) {
			return ErrUserAlreadyCreated
		}
		return err
	})
	if err != nil {
		return nil, ts.fail("register", actingCode, err, ErrStoreFailure)
	}

	logger.Log.Info("user registered", zap.String("email", user.Email), zap.String("admin_code", user.AdminCode))
	return user, nil
}

// ListTransactionsForUser returns the transactions a user took part in. The
// acting admin must have registered the user.
func (ts *TransactionService) ListTransactionsForUser(ctx context.Context, email, actingCode string, order store.Order) ([]models.Transaction, error) {
	if _, err := ts.lookupAdmin(ctx, actingCode); err != nil {
		return nil, err
	}

	user, err := ts.store.FindUser(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", ErrStoreFailure, err)
	}
	if user.AdminCode != actingCode {
		return nil, ErrAccessDenied
	}

	records, err := ts.store.ListTransactions(ctx, store.TransactionFilter{UserID: user.ID, Order: order})
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrStoreFailure, err)
	}
	return records, nil
}

// ListTransactionsForAdmin returns the transactions an admin performed.
func (ts *TransactionService) ListTransactionsForAdmin(ctx context.Context, adminCode string, order store.Order) ([]models.Transaction, error) {
	if _, err := ts.lookupAdmin(ctx, adminCode); err != nil {
		return nil, err
	}

	records, err := ts.store.ListTransactions(ctx, store.TransactionFilter{AdminCode: adminCode, Order: order})
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrStoreFailure, err)
	}
	return records, nil
}

// ListUsersForAdmin returns the users an admin registered.
func (ts *TransactionService) ListUsersForAdmin(ctx context.Context, adminCode string) ([]models.User, error) {
	if _, err := ts.lookupAdmin(ctx, adminCode); err != nil {
		return nil, err
	}

	users, err := ts.store.ListUsersByAdmin(ctx, adminCode)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", ErrStoreFailure, err)
	}
	return users, nil
}

func (ts *TransactionService) lookupAdmin(ctx context.Context, code string) (*models.Admin, error) {
	admin, err := ts.store.FindAdmin(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find admin: %w", ErrStoreFailure, err)
	}
	return admin, nil
}

// Execute dispatches a parsed operation.
func (ts *TransactionService) Execute(ctx context.Context, actingCode string, op Operation) (any, error) {
	switch op := op.(type) {
	case TransferOp:
		return ts.Transfer(ctx, op.SenderEmail, op.ReceiverEmail, op.Amount, op.Note, actingCode)
	case WithdrawOp:
		return ts.Withdraw(ctx, op.UserEmail, op.Amount, actingCode)
	case DepositOp:
		return ts.Deposit(ctx, op.UserEmail, op.Amount, actingCode)
	case ListOp:
		return ts.ListTransactionsForUser(ctx, op.UserEmail, actingCode, op.SortOrder())
	default:
		return nil, ErrUnknownProcess
	}
}
