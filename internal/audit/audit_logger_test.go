package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T) (*AuditLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return NewAuditLogger(), logs
}

func TestAuditLogger_LogTransaction(t *testing.T) {
	a, logs := observed(t)
	receiver := uuid.New()

	a.LogTransaction(&models.Transaction{
		ID:         uuid.New(),
		Type:       models.TransactionDeposit,
		ReceiverID: uuid.NullUUID{UUID: receiver, Valid: true},
		Amount:     decimal.RequireFromString("12.50"),
		AdminCode:  "ADM",
		CreatedAt:  time.Now(),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "AUDIT", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, EventTransaction, fields["event_type"])
	assert.Equal(t, "12.5", fields["amount"])
	assert.Equal(t, receiver.String(), fields["receiver_id"])
	assert.NotContains(t, fields, "sender_id")
}

func TestAuditLogger_LogAdminTransition(t *testing.T) {
	a, logs := observed(t)

	a.LogAdminTransition("ADM", true)
	a.LogAdminTransition("ADM", false)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "deactivated", logs.All()[0].ContextMap()["state"])
	assert.Equal(t, "active", logs.All()[1].ContextMap()["state"])
}

func TestAuditLogger_LogError(t *testing.T) {
	a, logs := observed(t)

	a.LogError("withdraw", "ADM", errors.New("connection reset"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, EventError, entry.ContextMap()["event_type"])
	assert.Equal(t, "connection reset", entry.ContextMap()["error"])
}
