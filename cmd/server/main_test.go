package main

import (
	"context"
	"testing"

	"github.com/adminbank/backend/internal/audit"
	"github.com/adminbank/backend/internal/config"
	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/services"
	"github.com/adminbank/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBootstrapSuperAdmin_LogsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	hasher := services.NewArgon2Hasher(config.Argon2Config{Time: 1, Memory: 64, Threads: 1, KeyLength: 32, SaltLength: 16})
	admins := services.NewAdminService(store.NewMemory(), hasher, audit.NewAuditLogger())
	cfg := config.BootstrapConfig{AdminName: "root", AdminPassword: "root-password"}

	require.NoError(t, bootstrapSuperAdmin(context.Background(), admins, cfg))

	entries := logs.FilterMessage("bootstrap super-admin created").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "root", fields["name"])
	assert.NotEmpty(t, fields["admin_code"])

	all, err := admins.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, all[0].Code, fields["admin_code"])

	// A populated directory is left alone.
	require.NoError(t, bootstrapSuperAdmin(context.Background(), admins, cfg))
	assert.Len(t, logs.FilterMessage("bootstrap super-admin created").All(), 1)
}
