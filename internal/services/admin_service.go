package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adminbank/backend/internal/audit"
	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/models"
	"github.com/adminbank/backend/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	adminCodeBytes   = 6
	maxCodeAttempts  = 5
	adminCodeTimeFmt = time.RFC3339Nano
)

// AdminService manages the admin directory and its activation state machine.
type AdminService struct {
	store  store.Store
	hasher CredentialHasher
	audit  audit.Logger
	now    func() time.Time
}

func NewAdminService(st store.Store, hasher CredentialHasher, auditLogger audit.Logger) *AdminService {
	return &AdminService{
		store:  st,
		hasher: hasher,
		audit:  auditLogger,
		now:    time.Now,
	}
}

// GenerateAdminCode derives the public admin code from a name and a
// creation instant through SHA-256.
func GenerateAdminCode(name string, at time.Time) string {
	sum := sha256.Sum256([]byte(name + at.UTC().Format(adminCodeTimeFmt)))
	return strings.ToUpper(hex.EncodeToString(sum[:adminCodeBytes]))
}

func (s *AdminService) FindAll(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list admins: %w", ErrStoreFailure, err)
	}
	return admins, nil
}

func (s *AdminService) FindByCode(ctx context.Context, code string) (*models.Admin, error) {
	admin, err := s.store.FindAdmin(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find admin: %w", ErrStoreFailure, err)
	}
	return admin, nil
}

// Create persists a new active admin. A code collision is retried with a
// fresh timestamp.
func (s *AdminService) Create(ctx context.Context, name, credential string, role models.Role) (*models.Admin, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdminCreation, err)
	}

	var last time.Time
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		at := s.now()
		if !at.After(last) {
			at = last.Add(time.Nanosecond)
		}
		last = at

		admin := &models.Admin{
			ID:             uuid.New(),
			Code:           GenerateAdminCode(name, at),
			Name:           name,
			CredentialHash: hash,
			Role:           role,
			CreatedAt:      at,
			UpdatedAt:      at,
		}

		err := s.store.InTx(ctx, func(tx store.Tx) error {
			return tx.InsertAdmin(ctx, admin)
		})
		if errors.Is(err, store.ErrConflict) {
			logger.Log.Warn("admin code collision, regenerating", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAdminCreation, err)
		}

		logger.Log.Info("admin created", zap.String("admin_code", admin.Code), zap.String("role", string(role)))
		return admin, nil
	}

	return nil, fmt.Errorf("%w: no unique code after %d attempts", ErrAdminCreation, maxCodeAttempts)
}

// Activate moves a deactivated admin back to active.
func (s *AdminService) Activate(ctx context.Context, code string) (*models.Admin, error) {
	return s.transition(ctx, code, false)
}

// Deactivate moves an active admin to deactivated.
func (s *AdminService) Deactivate(ctx context.Context, code string) (*models.Admin, error) {
	return s.transition(ctx, code, true)
}

func (s *AdminService) transition(ctx context.Context, code string, deactivate bool) (*models.Admin, error) {
	var updated *models.Admin
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		admin, err := tx.LockAdmin(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return ErrAdminNotFound
		}
		if err != nil {
			return err
		}

		switch {
		case deactivate && admin.Deactivated:
			return ErrAlreadyDeactivated
		case !deactivate && admin.Active():
			return ErrAlreadyActivated
		}

		at := s.now()
		if err := tx.SetAdminDeactivated(ctx, code, deactivate, at); err != nil {
			return err
		}
		admin.Deactivated = deactivate
		admin.UpdatedAt = at
		updated = admin
		return nil
	})
	if err != nil {
		if IsBusinessError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: admin transition: %w", ErrStoreFailure, err)
	}

	s.audit.LogAdminTransition(code, deactivate)
	return updated, nil
}

// EnsureSuperAdmin creates a super-admin when the directory is empty. It
// reports whether one was created.
func (s *AdminService) EnsureSuperAdmin(ctx context.Context, name, credential string) (*models.Admin, bool, error) {
	admins, err := s.FindAll(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(admins) > 0 {
		return nil, false, nil
	}

	admin, err := s.Create(ctx, name, credential, models.RoleSuper)
	if err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
