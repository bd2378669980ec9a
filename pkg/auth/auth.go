// Package auth is the password-verification contract that collaborating
// services implement. A failed verification always yields ErrInvalidPassword,
// whose message is fixed and never says whether the login exists.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when a password does not verify. Its message
// carries no parameters.
var ErrInvalidPassword = errors.New("incorrect password")

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 12

// CredentialStore looks up password hashes.
type CredentialStore interface {
	// PasswordHash returns the bcrypt hash stored for login. found is false
	// when the login is unknown.
	PasswordHash(ctx context.Context, login string) (hash string, found bool, err error)
}

// MapStore is an in-memory CredentialStore keyed by login.
type MapStore map[string]string

// PasswordHash implements CredentialStore.
func (m MapStore) PasswordHash(_ context.Context, login string) (string, bool, error) {
	hash, ok := m[login]
	return hash, ok, nil
}

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("bcrypt cost out of range: %d (must be %d-%d)", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verifier checks passwords against a CredentialStore.
type Verifier struct {
	store     CredentialStore
	dummyHash []byte
}

// NewVerifier creates a verifier. cost is used for the hash compared against
// when a login is unknown, so both failure paths take the same time.
func NewVerifier(store CredentialStore, cost int) (*Verifier, error) {
	dummy, err := HashPassword("layerlint-unknown-login", cost)
	if err != nil {
		return nil, err
	}
	return &Verifier{store: store, dummyHash: []byte(dummy)}, nil
}

// Verify returns nil when password matches the stored hash for login and
// ErrInvalidPassword when the login is unknown or the password is wrong.
// Store failures are returned wrapped.
func (v *Verifier) Verify(ctx context.Context, login, password string) error {
	hash, found, err := v.store.PasswordHash(ctx, login)
	if err != nil {
		return fmt.Errorf("failed to look up credentials: %w", err)
	}

	if !found {
		_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
