// Package auth holds the credential primitives: bcrypt password hashing,
// HS256 session tokens and the middleware that reads them back.
//
// HASH FORMAT:
//
//	$2a$10$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (10 → 2^10 rounds)
//	 version
//
// The salt lives inside the hash string, so the users table/collection only
// needs one "password" field.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = bcrypt.DefaultCost

// maxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated by older implementations and is rejected by x/crypto.
const maxPasswordBytes = 72

var (
	// ErrPasswordTooLong is returned by Hash for input over 72 bytes.
	ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")
	// ErrMismatch is returned by Verify when the password is wrong.
	ErrMismatch = errors.New("auth: invalid password")
)

// PasswordService hashes and verifies passwords. The cost is a field so
// tests can drop it to bcrypt.MinCost.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService with DefaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceWithCost is for tests in other packages. Never pass a
// cost below DefaultCost in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrMismatch when it
// does not. A malformed hash yields a wrapped bcrypt error.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
}
