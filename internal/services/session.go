package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/adminbank/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims are the facts a session carries about its admin.
type SessionClaims struct {
	ID        string      `json:"-"`
	AdminCode string      `json:"adminCode"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"-"`
}

// SessionIssuer turns claims into a tamper-evident bearer token and back.
type SessionIssuer interface {
	Issue(claims SessionClaims) (string, SessionClaims, error)
	Resolve(token string) (*SessionClaims, error)
}

type jwtClaims struct {
	AdminCode string `json:"admin_code"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTSessions signs sessions with HS256.
type JWTSessions struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTSessions(secret string, expiry time.Duration) *JWTSessions {
	return &JWTSessions{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Issue returns the signed token and the claims as issued, with the
// session ID and expiry filled in.
func (s *JWTSessions) Issue(claims SessionClaims) (string, SessionClaims, error) {
	now := s.now()
	claims.ID = uuid.NewString()
	claims.ExpiresAt = now.Add(s.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		AdminCode: claims.AdminCode,
		Role:      string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID,
			Subject:   claims.AdminCode,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", SessionClaims{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, claims, nil
}

func (s *JWTSessions) Resolve(tokenString string) (*SessionClaims, error) {
	var parsed jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	role := models.Role(parsed.Role)
	if parsed.AdminCode == "" || !role.Valid() || parsed.ID == "" {
		return nil, ErrInvalidSession
	}

	return &SessionClaims{
		ID:        parsed.ID,
		AdminCode: parsed.AdminCode,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
