package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adminbank/backend/internal/config"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("connection reset by peer")

type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) LogTransaction(record *models.Transaction) {
	m.Called(record)
}

func (m *MockAuditLogger) LogAdminTransition(adminCode string, deactivated bool) {
	m.Called(adminCode, deactivated)
}

func (m *MockAuditLogger) LogError(operation, adminCode string, err error) {
	m.Called(operation, adminCode, err)
}

func newMockAudit() *MockAuditLogger {
	m := &MockAuditLogger{}
	m.On("LogTransaction", mock.Anything).Maybe()
	m.On("LogAdminTransition", mock.Anything, mock.Anything).Maybe()
	m.On("LogError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return m
}

// failingStore injects errBoom into the named Tx method.
type failingStore struct {
	store.Store
	failOn string
}

func (s *failingStore) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.InTx(ctx, func(tx store.Tx) error {
		return fn(&failingTx{Tx: tx, failOn: s.failOn})
	})
}

type failingTx struct {
	store.Tx
	failOn string
}

func (t *failingTx) LockUsers(ctx context.Context, emails ...string) (map[string]*models.User, error) {
	if t.failOn == "LockUsers" {
		return nil, errBoom
	}
	return t.Tx.LockUsers(ctx, emails...)
}

func (t *failingTx) UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal, at time.Time) error {
	if t.failOn == "UpdateBalance" {
		return errBoom
	}
	return t.Tx.UpdateBalance(ctx, userID, balance, at)
}

func (t *failingTx) InsertTransaction(ctx context.Context, record *models.Transaction) error {
	if t.failOn == "InsertTransaction" {
		return errBoom
	}
	return t.Tx.InsertTransaction(ctx, record)
}

func (t *failingTx) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	if t.failOn == "InsertAdmin" {
		return errBoom
	}
	return t.Tx.InsertAdmin(ctx, admin)
}

func testHasher() *Argon2Hasher {
	return NewArgon2Hasher(config.Argon2Config{Time: 1, Memory: 64, Threads: 1, KeyLength: 32, SaltLength: 16})
}

type fixture struct {
	store  *store.Memory
	audit  *MockAuditLogger
	admins *AdminService
	txs    *TransactionService
}

func newFixture() *fixture {
	st := store.NewMemory()
	auditLogger := newMockAudit()
	return &fixture{
		store:  st,
		audit:  auditLogger,
		admins: NewAdminService(st, testHasher(), auditLogger),
		txs:    NewTransactionService(st, auditLogger),
	}
}

func (f *fixture) admin(t *testing.T, name string) *models.Admin {
	t.Helper()
	admin, err := f.admins.Create(context.Background(), name, "secret-"+name, models.RoleStandard)
	require.NoError(t, err)
	return admin
}

func (f *fixture) user(t *testing.T, adminCode, email string) *models.User {
	t.Helper()
	user, err := f.txs.RegisterUser(context.Background(), "User "+email, email, "ST", "TW", adminCode)
	require.NoError(t, err)
	return user
}

func (f *fixture) fund(t *testing.T, adminCode, email, amount string) {
	t.Helper()
	_, err := f.txs.Deposit(context.Background(), email, decimal.RequireFromString(amount), adminCode)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, email string) decimal.Decimal {
	t.Helper()
	user, err := f.store.FindUser(context.Background(), email)
	require.NoError(t, err)
	return user.Balance
}

func (f *fixture) records(t *testing.T) []models.Transaction {
	t.Helper()
	records, err := f.store.ListTransactions(context.Background(), store.TransactionFilter{})
	require.NoError(t, err)
	return records
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
