package sso

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the fixed work factor for password hashing. Higher is more
// secure but slower; 10-12 is the recommended band.
const BcryptCost = 12

// BcryptHasher implements PasswordHasher on top of bcrypt. Salt freshness
// comes from the algorithm: hashing the same plaintext twice yields two
// different digests that both verify.
type BcryptHasher struct {
	cost   int
	logger Logger
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher with the fixed work factor.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{
		cost:   BcryptCost,
		logger: defLogger{},
	}
}

func (h *BcryptHasher) WithLogger(logger Logger) *BcryptHasher {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// Hash generates a salted digest for the given plaintext. Empty plaintext
// is a validation error.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		h.logger.Error("attempt to hash empty password")
		return "", ErrEmptyPassword
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Empty inputs are
// validation errors; a malformed digest yields (false, nil) rather than an
// error so bad stored data cannot be escalated into an authentication
// bypass or a crash oracle.
func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	if plaintext == "" {
		h.logger.Error("attempt to verify empty plaintext password")
		return false, ErrEmptyPassword
	}
	if digest == "" {
		h.logger.Error("attempt to verify against empty digest")
		return false, ErrEmptyDigest
	}

	if err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			h.logger.Warn("invalid digest format during verification: %v", err)
		}
		return false, nil
	}
	return true, nil
}

// GenerateTempPassword produces a random one-time password for the
// forgot-password flow. Only its hash is stored; the plaintext is returned
// once for delivery.
func GenerateTempPassword() string {
	return uuid.NewString()
}
