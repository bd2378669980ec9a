package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type failingStore struct{}

func (failingStore) PasswordHash(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	v, err := NewVerifier(MapStore{"alice": hash}, bcrypt.MinCost)
	require.NoError(t, err)
	return v
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "hash should use bcrypt")
	assert.NotContains(t, hash, "s3cret")

	_, err = HashPassword("s3cret", 99)
	assert.Error(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{name: "correct password", login: "alice", password: "s3cret"},
		{name: "wrong password", login: "alice", password: "guess", wantErr: ErrInvalidPassword},
		{name: "unknown login", login: "mallory", password: "s3cret", wantErr: ErrInvalidPassword},
		{name: "empty password", login: "alice", password: "", wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), tt.login, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifier_FailuresAreIndistinguishable(t *testing.T) {
	v := newTestVerifier(t)

	wrong := v.Verify(context.Background(), "alice", "guess")
	unknown := v.Verify(context.Background(), "mallory", "guess")

	assert.Equal(t, "incorrect password", wrong.Error())
	assert.Equal(t, wrong.Error(), unknown.Error())
	assert.Same(t, wrong, unknown)
}

func TestVerifier_StoreError(t *testing.T) {
	v, err := NewVerifier(failingStore{}, bcrypt.MinCost)
	require.NoError(t, err)

	err = v.Verify(context.Background(), "alice", "s3cret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidPassword))
	assert.Contains(t, err.Error(), "connection refused")
}
