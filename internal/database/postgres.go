package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adminbank/backend/internal/config"
	"github.com/adminbank/backend/internal/logger"
	_ "github.com/lib/pq"
)

// InitDB opens the connection pool and verifies connectivity.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Log.Info("database connection established")
	return db, nil
}
