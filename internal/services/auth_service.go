package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adminbank/backend/internal/logger"
	"github.com/adminbank/backend/internal/store"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "blacklist:"

// AuthService verifies admin credentials and manages sessions. It does not
// decide business authorization; TransactionService does that.
type AuthService struct {
	store     store.Store
	hasher    CredentialHasher
	sessions  SessionIssuer
	redis     *redis.Client
	dummyHash string
	now       func() time.Time
}

// Session is an issued bearer token with the claims it embeds.
type Session struct {
	Token  string
	Claims SessionClaims
}

func NewAuthService(st store.Store, hasher CredentialHasher, sessions SessionIssuer, redisClient *redis.Client) *AuthService {
	// Unknown codes are verified against a throwaway hash so both failure
	// paths cost the same.
	dummy, err := hasher.Hash("unused-credential")
	if err != nil {
		logger.Log.Warn("dummy credential hash unavailable", zap.Error(err))
	}
	return &AuthService{
		store:     st,
		hasher:    hasher,
		sessions:  sessions,
		redis:     redisClient,
		dummyHash: dummy,
		now:       time.Now,
	}
}

// Login returns the admin's claims. Every failure, including store errors,
// surfaces as ErrAccessDenied; the real reason is only logged.
func (s *AuthService) Login(ctx context.Context, adminCode, credential string) (*SessionClaims, error) {
	admin, err := s.store.FindAdmin(ctx, adminCode)
	if err != nil {
		reason := "unknown_admin"
		if !errors.Is(err, store.ErrNotFound) {
			reason = "store_error"
		}
		s.hasher.Verify(s.dummyHash, credential)
		logger.Log.Warn("login denied", zap.String("admin_code", adminCode), zap.String("reason", reason), zap.Error(err))
		return nil, ErrAccessDenied
	}

	if !s.hasher.Verify(admin.CredentialHash, credential) {
		logger.Log.Warn("login denied", zap.String("admin_code", adminCode), zap.String("reason", "bad_credential"))
		return nil, ErrAccessDenied
	}

	logger.Log.Info("login succeeded", zap.String("admin_code", admin.Code))
	return &SessionClaims{AdminCode: admin.Code, Role: admin.Role}, nil
}

func (s *AuthService) IssueSession(claims SessionClaims) (*Session, error) {
	token, issued, err := s.sessions.Issue(claims)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Claims: issued}, nil
}

// ResolveSession verifies a token and rejects revoked sessions.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*SessionClaims, error) {
	claims, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		n, err := s.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: revocation lookup: %w", ErrStoreFailure, err)
		}
		if n > 0 {
			return nil, ErrInvalidSession
		}
	}
	return claims, nil
}

// Logout revokes the session until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *SessionClaims) error {
	if s.redis == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: revoke session: %w", ErrStoreFailure, err)
	}

	logger.Log.Info("session revoked", zap.String("admin_code", claims.AdminCode))
	return nil
}
