package audit

import (
	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/models"
	"go.uber.org/zap"
)

const (
	EventTransaction = "TRANSACTION"
	EventAdminState  = "ADMIN_STATE"
	EventError       = "ERROR"
)

// Logger records committed mutations. It never fails the caller.
type Logger interface {
	LogTransaction(record *models.Transaction)
	LogAdminTransition(adminCode string, deactivated bool)
	LogError(operation, adminCode string, err error)
}

type AuditLogger struct {
	log *zap.Logger
}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{log: logger.Log.Named("audit")}
}

func (a *AuditLogger) LogTransaction(record *models.Transaction) {
	fields := []zap.Field{
		zap.String("event_type", EventTransaction),
		zap.String("tx_id", record.ID.String()),
		zap.String("type", string(record.Type)),
		zap.String("amount", record.Amount.String()),
		zap.String("admin_code", record.AdminCode),
		zap.Time("at", record.CreatedAt),
	}
	if record.SenderID.Valid {
		fields = append(fields, zap.String("sender_id", record.SenderID.UUID.String()))
	}
	if record.ReceiverID.Valid {
		fields = append(fields, zap.String("receiver_id", record.ReceiverID.UUID.String()))
	}
	a.log.Info("AUDIT", fields...)
}

func (a *AuditLogger) LogAdminTransition(adminCode string, deactivated bool) {
	state := "active"
	if deactivated {
		state = "deactivated"
	}
	a.log.Info("AUDIT",
		zap.String("event_type", EventAdminState),
		zap.String("admin_code", adminCode),
		zap.String("state", state),
	)
}

func (a *AuditLogger) LogError(operation, adminCode string, err error) {
	a.log.Warn("AUDIT",
		zap.String("event_type", EventError),
		zap.String("operation", operation),
		zap.String("admin_code", adminCode),
		zap.Error(err),
	)
}
