package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adminbank/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory is an in-process Store. Atomic units are serialized on a single
// mutex and applied copy-on-write, so a failed unit leaves no trace.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	admins     map[string]models.Admin
	adminOrder []string
	users      map[string]models.User
	userOrder  []string
	userEmails map[uuid.UUID]string
	txs        []models.Transaction
}

func NewMemory() *Memory {
	return &Memory{state: &memState{
		admins:     map[string]models.Admin{},
		users:      map[string]models.User{},
		userEmails: map[uuid.UUID]string{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		admins:     make(map[string]models.Admin, len(s.admins)),
		adminOrder: s.adminOrder[:len(s.adminOrder):len(s.adminOrder)],
		users:      make(map[string]models.User, len(s.users)),
		userOrder:  s.userOrder[:len(s.userOrder):len(s.userOrder)],
		userEmails: make(map[uuid.UUID]string, len(s.userEmails)),
		// Full slice expressions force appends in the clone to reallocate.
		txs: s.txs[:len(s.txs):len(s.txs)],
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.userEmails {
		c.userEmails[k] = v
	}
	return c
}

func (m *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	work := m.state.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.state = work
	return nil
}

func (m *Memory) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	admins := make([]models.Admin, 0, len(m.state.adminOrder))
	for _, code := range m.state.adminOrder {
		admins = append(admins, m.state.admins[code])
	}
	return admins, ctx.Err()
}

func (m *Memory) FindAdmin(ctx context.Context, code string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	admin, ok := m.state.admins[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (m *Memory) FindUser(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, ok := m.state.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) ListUsersByAdmin(ctx context.Context, adminCode string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := []models.User{}
	for _, email := range m.state.userOrder {
		if u := m.state.users[email]; u.AdminCode == adminCode {
			users = append(users, u)
		}
	}
	return users, ctx.Err()
}

func (m *Memory) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := []models.Transaction{}
	for _, t := range m.state.txs {
		if filter.UserID != uuid.Nil && !involves(t, filter.UserID) {
			continue
		}
		if filter.AdminCode != "" && t.AdminCode != filter.AdminCode {
			continue
		}
		records = append(records, t)
	}
	if filter.Order == OrderDesc {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	return records, ctx.Err()
}

func involves(t models.Transaction, userID uuid.UUID) bool {
	return (t.SenderID.Valid && t.SenderID.UUID == userID) ||
		(t.ReceiverID.Valid && t.ReceiverID.UUID == userID)
}

type memTx struct {
	st *memState
}

func (t *memTx) AdminByCode(ctx context.Context, code string) (*models.Admin, error) {
	return t.LockAdmin(ctx, code)
}

func (t *memTx) LockAdmin(ctx context.Context, code string) (*models.Admin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	admin, ok := t.st.admins[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (t *memTx) InsertAdmin(ctx context.Context, admin *models.Admin) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.st.admins[admin.Code]; ok {
		return fmt.Errorf("%w: admins_code_key", ErrConflict)
	}
	t.st.admins[admin.Code] = *admin
	t.st.adminOrder = append(t.st.adminOrder, admin.Code)
	return nil
}

func (t *memTx) SetAdminDeactivated(ctx context.Context, code string, deactivated bool, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	admin, ok := t.st.admins[code]
	if !ok {
		return ErrNotFound
	}
	admin.Deactivated = deactivated
	admin.UpdatedAt = at
	t.st.admins[code] = admin
	return nil
}

func (t *memTx) LockUsers(ctx context.Context, emails ...string) (map[string]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ordered := append([]string(nil), emails...)
	sort.Strings(ordered)

	users := make(map[string]*models.User, len(ordered))
	for _, email := range ordered {
		if u, ok := t.st.users[email]; ok {
			users[email] = &u
		}
	}
	return users, nil
}

func (t *memTx) InsertUser(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.st.users[user.Email]; ok {
		return fmt.Errorf("%w: users_email_key", ErrConflict)
	}
	t.st.users[user.Email] = *user
	t.st.userOrder = append(t.st.userOrder, user.Email)
	t.st.userEmails[user.ID] = user.Email
	return nil
}

func (t *memTx) UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email, ok := t.st.userEmails[userID]
	if !ok {
		return ErrNotFound
	}
	if balance.IsNegative() {
		return fmt.Errorf("users_balance_check: negative balance %s", balance)
	}
	u := t.st.users[email]
	u.Balance = balance
	u.UpdatedAt = at
	t.st.users[email] = u
	return nil
}

func (t *memTx) InsertTransaction(ctx context.Context, record *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.st.txs = append(t.st.txs, *record)
	return nil
}
