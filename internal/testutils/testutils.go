// Package testutils holds fixtures shared by tests across packages.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nfrund/signin/internal/config"
	"github.com/nfrund/signin/internal/memstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Fixture credentials.
const (
	ValidEmail    = "valid@gmail.com"
	ValidPassword = "validPassword"
	InvalidEmail  = "invalidEmail"

	SessionSecret = "a-very-secret-key-for-testing-!"
	TokenSecret   = "test-secret"
)

// MemoryUsers returns an in-memory user store holding one account with
// ValidEmail and ValidPassword.
func MemoryUsers(t *testing.T) *memstore.Store {
	t.Helper()
	users := memstore.New(TokenSecret, memstore.WithBcryptCost(bcrypt.MinCost))
	_, err := users.CreateUser(context.Background(), ValidEmail, ValidPassword)
	require.NoError(t, err)
	return users
}

// Token signs the fixture account in and returns its session token.
func Token(t *testing.T, users *memstore.Store) string {
	t.Helper()
	token, err := users.SignIn(context.Background(), ValidEmail, ValidPassword)
	require.NoError(t, err)
	return token
}

// MemoryConfig returns a valid configuration for the in-memory backend.
func MemoryConfig() *config.Config {
	return &config.Config{
		AppBaseURL:         "http://localhost:8080",
		SessionSecret:      SessionSecret,
		AuthBackend:        config.BackendMemory,
		MemoryTokenSecret:  TokenSecret,
		EmailProvider:      "log",
		RateLimitPerMinute: 100,
		SigninCallTimeout:  2 * time.Second,
		SigninScreenTTL:    time.Minute,
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
