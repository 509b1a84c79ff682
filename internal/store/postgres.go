package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adminbank/backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	adminColumns       = "id, code, name, credential_hash, role, is_deactivated, created_at, updated_at"
	userColumns        = "id, name, email, balance, admin_code, state_code, township_code, created_at, updated_at"
	transactionColumns = "id, type, sender_id, receiver_id, amount, note, admin_code, created_at"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Postgres implements Store on top of a lib/pq connection pool.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) InTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&pgTx{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []models.Admin{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *admin)
	}
	return admins, rows.Err()
}

func (s *Postgres) FindAdmin(ctx context.Context, code string) (*models.Admin, error) {
	return queryAdmin(ctx, s.db, `SELECT `+adminColumns+` FROM admins WHERE code = $1`, code)
}

func (s *Postgres) FindUser(ctx context.Context, email string) (*models.User, error) {
	return queryUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Postgres) ListUsersByAdmin(ctx context.Context, adminCode string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE admin_code = $1 ORDER BY created_at`, adminCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Postgres) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("(sender_id = $%d OR receiver_id = $%d)", len(args), len(args)))
	}
	if filter.AdminCode != "" {
		args = append(args, filter.AdminCode)
		where = append(where, fmt.Sprintf("admin_code = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if filter.Order == OrderDesc {
		b.WriteString(" ORDER BY seq DESC")
	} else {
		b.WriteString(" ORDER BY seq ASC")
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Note, &t.AdminCode, &t.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

type pgTx struct {
	q queryer
}

func (t *pgTx) AdminByCode(ctx context.Context, code string) (*models.Admin, error) {
	return queryAdmin(ctx, t.q, `SELECT `+adminColumns+` FROM admins WHERE code = $1 FOR SHARE`, code)
}

func (t *pgTx) LockAdmin(ctx context.Context, code string) (*models.Admin, error) {
	return queryAdmin(ctx, t.q, `SELECT `+adminColumns+` FROM admins WHERE code = $1 FOR UPDATE`, code)
}

func (t *pgTx) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO admins (id, code, name, credential_hash, role, is_deactivated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		admin.ID, admin.Code, admin.Name, admin.CredentialHash, string(admin.Role), admin.Deactivated, admin.CreatedAt, admin.UpdatedAt)
	return mapError(err)
}

func (t *pgTx) SetAdminDeactivated(ctx context.Context, code string, deactivated bool, at time.Time) error {
	result, err := t.q.ExecContext(ctx, `
		UPDATE admins SET is_deactivated = $1, updated_at = $2 WHERE code = $3`,
		deactivated, at, code)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (t *pgTx) LockUsers(ctx context.Context, emails ...string) (map[string]*models.User, error) {
	// Consistent lock order keeps opposite-direction transfers from deadlocking.
	ordered := append([]string(nil), emails...)
	sort.Strings(ordered)

	users := make(map[string]*models.User, len(ordered))
	for i, email := range ordered {
		if i > 0 && ordered[i-1] == email {
			continue
		}
		user, err := queryUser(ctx, t.q, `SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users[email] = user
	}
	return users, nil
}

func (t *pgTx) InsertUser(ctx context.Context, user *models.User) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO users (id, name, email, balance, admin_code, state_code, township_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Name, user.Email, user.Balance, user.AdminCode, user.StateCode, user.TownshipCode, user.CreatedAt, user.UpdatedAt)
	return mapError(err)
}

func (t *pgTx) UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal, at time.Time) error {
	result, err := t.q.ExecContext(ctx, `
		UPDATE users SET balance = $1, updated_at = $2 WHERE id = $3`,
		balance, at, userID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (t *pgTx) InsertTransaction(ctx context.Context, record *models.Transaction) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO transactions (id, type, sender_id, receiver_id, amount, note, admin_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, string(record.Type), record.SenderID, record.ReceiverID, record.Amount, record.Note, record.AdminCode, record.CreatedAt)
	return mapError(err)
}

func queryAdmin(ctx context.Context, q queryer, query string, args ...any) (*models.Admin, error) {
	admin, err := scanAdmin(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return admin, nil
}

func queryUser(ctx context.Context, q queryer, query string, args ...any) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func scanAdmin(row rowScanner) (*models.Admin, error) {
	var a models.Admin
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.CredentialHash, &a.Role, &a.Deactivated, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Balance, &u.AdminCode, &u.StateCode, &u.TownshipCode, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}
