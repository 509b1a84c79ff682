package services

import (
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/adminbank/backend/internal/config"
	"golang.org/x/crypto/argon2"
)

// CredentialHasher hashes and verifies admin credentials.
type CredentialHasher interface {
	Hash(credential string) (string, error)
	Verify(stored, provided string) bool
}

// Argon2Hasher stores credentials as "base64(salt)$base64(argon2id key)".
type Argon2Hasher struct {
	params config.Argon2Config
}

func NewArgon2Hasher(params config.Argon2Config) *Argon2Hasher {
	return &Argon2Hasher{params: params}
}

func (h *Argon2Hasher) Hash(credential string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := h.derive(credential, salt)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(key)), nil
}

func (h *Argon2Hasher) Verify(stored, provided string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, h.derive(provided, salt)) == 1
}

func (h *Argon2Hasher) derive(credential string, salt []byte) []byte {
	return argon2.IDKey([]byte(credential), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLength)
}
