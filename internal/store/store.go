// Package store is the durable boundary for admins, users and the
// transaction log. Every balance mutation goes through Store.InTx.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/adminbank/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrConflict = errors.New("store: unique constraint violated")
)

type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

// TransactionFilter narrows ListTransactions. Zero fields do not filter.
// UserID matches either side of a transaction.
type TransactionFilter struct {
	UserID    uuid.UUID
	AdminCode string
	Order     Order
}

type Store interface {
	// InTx runs fn as one atomic unit. The unit commits only when fn returns
	// nil; otherwise it is rolled back and fn's error is returned as is.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ListAdmins(ctx context.Context) ([]models.Admin, error)
	FindAdmin(ctx context.Context, code string) (*models.Admin, error)
	FindUser(ctx context.Context, email string) (*models.User, error)
	ListUsersByAdmin(ctx context.Context, adminCode string) ([]models.User, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
}

// Tx is the set of reads and writes available inside an atomic unit. Rows
// returned by the locking reads stay locked until the unit ends.
type Tx interface {
	// AdminByCode reads an admin under a shared lock.
	AdminByCode(ctx context.Context, code string) (*models.Admin, error)
	// LockAdmin reads an admin under an exclusive lock.
	LockAdmin(ctx context.Context, code string) (*models.Admin, error)
	InsertAdmin(ctx context.Context, admin *models.Admin) error
	SetAdminDeactivated(ctx context.Context, code string, deactivated bool, at time.Time) error

	// LockUsers locks the users with the given emails in ascending email
	// order. Emails with no matching user are absent from the result.
	LockUsers(ctx context.Context, emails ...string) (map[string]*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal, at time.Time) error

	InsertTransaction(ctx context.Context, record *models.Transaction) error
}
