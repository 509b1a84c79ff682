package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adminbank/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminCols = []string{"id", "code", "name", "credential_hash", "role", "is_deactivated", "created_at", "updated_at"}
	userCols  = []string{"id", "name", "email", "balance", "admin_code", "state_code", "township_code", "created_at", "updated_at"}
	txCols    = []string{"id", "type", "sender_id", "receiver_id", "amount", "note", "admin_code", "created_at"}
)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func TestPostgres_InTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		st, mock := newMockStore(t)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET is_deactivated = $1, updated_at = $2 WHERE code = $3")).
			WithArgs(true, now, "ABC").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := st.InTx(ctx, func(tx Tx) error {
			return tx.SetAdminDeactivated(ctx, "ABC", true, now)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		st, mock := newMockStore(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := st.InTx(ctx, func(tx Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := st.InTx(ctx, func(tx Tx) error { return nil })
		assert.ErrorContains(t, err, "begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected is not found", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET balance = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := st.InTx(ctx, func(tx Tx) error {
			return tx.UpdateBalance(ctx, uuid.New(), decimal.NewFromInt(5), time.Now())
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_LockUsers(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()
	id := uuid.New()

	lockQuery := regexp.QuoteMeta("FROM users WHERE email = $1 FOR UPDATE")

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).WithArgs("a@x.io").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(id.String(), "A", "a@x.io", "12.50", "ADM", "ST", "TW", now, now))
	mock.ExpectQuery(lockQuery).WithArgs("b@x.io").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectCommit()

	var users map[string]*models.User
	err := st.InTx(ctx, func(tx Tx) error {
		var err error
		users, err = tx.LockUsers(ctx, "b@x.io", "a@x.io", "a@x.io")
		return err
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, id, users["a@x.io"].ID)
	assert.True(t, users["a@x.io"].Balance.Equal(decimal.RequireFromString("12.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AdminLocks(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE code = $1 FOR SHARE")).WithArgs("ADM").
		WillReturnRows(sqlmock.NewRows(adminCols).
			AddRow(uuid.NewString(), "ADM", "alice", "hash", "standard", false, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE code = $1 FOR UPDATE")).WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(adminCols))
	mock.ExpectRollback()

	err := st.InTx(ctx, func(tx Tx) error {
		admin, err := tx.AdminByCode(ctx, "ADM")
		require.NoError(t, err)
		assert.Equal(t, models.RoleStandard, admin.Role)
		assert.True(t, admin.Active())

		_, err = tx.LockAdmin(ctx, "NOPE")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertConflict(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	mock.ExpectRollback()

	err := st.InTx(ctx, func(tx Tx) error {
		return tx.InsertUser(ctx, &models.User{
			ID: uuid.New(), Name: "A", Email: "a@x.io", Balance: decimal.Zero,
			AdminCode: "ADM", CreatedAt: now, UpdatedAt: now,
		})
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorContains(t, err, "users_email_key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertTransaction(t *testing.T) {
	st, mock := newMockStore(t)
	ctx := context.Background()
	record := &models.Transaction{
		ID:         uuid.New(),
		Type:       models.TransactionDeposit,
		ReceiverID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		Amount:     decimal.NewFromInt(10),
		AdminCode:  "ADM",
		CreatedAt:  time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(record.ID, "deposit", nil, record.ReceiverID.UUID.String(), "10", "", "ADM", record.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := st.InTx(ctx, func(tx Tx) error { return tx.InsertTransaction(ctx, record) })
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListTransactions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	t.Run("by user descending", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE (sender_id = $1 OR receiver_id = $1) ORDER BY seq DESC")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(txCols).
				AddRow(uuid.NewString(), "withdraw", userID.String(), nil, "3", "", "ADM", now).
				AddRow(uuid.NewString(), "deposit", nil, userID.String(), "5", "", "ADM", now))

		records, err := st.ListTransactions(ctx, TransactionFilter{UserID: userID, Order: OrderDesc})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, models.TransactionWithdraw, records[0].Type)
		assert.True(t, records[0].SenderID.Valid)
		assert.False(t, records[0].ReceiverID.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by admin ascending", func(t *testing.T) {
		st, mock := newMockStore(t)

		mock.ExpectQuery(regexp.QuoteMeta("FROM transactions WHERE admin_code = $1 ORDER BY seq ASC")).
			WithArgs("ADM").
			WillReturnRows(sqlmock.NewRows(txCols))

		records, err := st.ListTransactions(ctx, TransactionFilter{AdminCode: "ADM"})
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NotNil(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_FindAdminNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE code = $1")).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(adminCols))

	_, err := st.FindAdmin(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
