package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adminbank/backend/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id              UUID PRIMARY KEY,
		code            TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL,
		credential_hash TEXT NOT NULL,
		role            TEXT NOT NULL CHECK (role IN ('standard', 'super')),
		is_deactivated  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		balance       NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
		admin_code    TEXT NOT NULL REFERENCES admins (code),
		state_code    TEXT NOT NULL,
		township_code TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_admin_code_idx ON users (admin_code)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		seq         BIGSERIAL UNIQUE,
		id          UUID PRIMARY KEY,
		type        TEXT NOT NULL CHECK (type IN ('transfer', 'withdraw', 'deposit')),
		sender_id   UUID REFERENCES users (id),
		receiver_id UUID REFERENCES users (id),
		amount      NUMERIC NOT NULL CHECK (amount > 0),
		note        TEXT NOT NULL DEFAULT '',
		admin_code  TEXT NOT NULL REFERENCES admins (code),
		created_at  TIMESTAMPTZ NOT NULL,
		CHECK (sender_id IS NULL OR receiver_id IS NULL OR sender_id <> receiver_id)
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_sender_idx ON transactions (sender_id)`,
	`CREATE INDEX IF NOT EXISTS transactions_receiver_idx ON transactions (receiver_id)`,
	`CREATE INDEX IF NOT EXISTS transactions_admin_code_idx ON transactions (admin_code)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	logger.Log.Info("migrations applied")
	return nil
}
