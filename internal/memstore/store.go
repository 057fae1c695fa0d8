// Package memstore is an in-memory domain.UserRepository for development and
// tests. Passwords are bcrypt hashes and session tokens are HS256 JWTs.
package memstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nfrund/signin/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	userTable     = "user"
	tokenIssuer   = "signin"
	tokenTTL      = 24 * time.Hour
	resetTokenTTL = 24 * time.Hour
)

type record struct {
	id           string
	email        string
	passwordHash []byte
	resetToken   string
	resetExpires time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		s.cost = cost
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store keeps users in memory keyed by normalized email.
type Store struct {
	secret []byte
	cost   int
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]*record
}

// New creates an empty Store signing session tokens with secret.
func New(secret string, opts ...Option) *Store {
	s := &Store{
		secret: []byte(secret),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		users:  make(map[string]*record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new user and returns a session token.
func (s *Store) CreateUser(ctx context.Context, email, password string) (string, error) {
	key := normalize(email)
	if key == "" || password == "" {
		return "", errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.users[key]; exists {
		s.mu.Unlock()
		return "", domain.ErrUserAlreadyExists
	}
	rec := &record{id: uuid.NewString(), email: key, passwordHash: hash}
	s.users[key] = rec
	s.mu.Unlock()

	return s.issueToken(rec)
}

// SignIn verifies the credentials and returns a session token.
func (s *Store) SignIn(ctx context.Context, email, password string) (string, error) {
	s.mu.RLock()
	rec, ok := s.users[normalize(email)]
	s.mu.RUnlock()
	if !ok {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.issueToken(rec)
}

func (s *Store) issueToken(rec *record) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   rec.email,
		ID:        rec.id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Authenticate validates a session token and returns the associated user.
func (s *Store) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	s.mu.RLock()
	rec, ok := s.users[claims.Subject]
	s.mu.RUnlock()
	if !ok || rec.id != claims.ID {
		return nil, domain.ErrInvalidToken
	}
	return rec.toUser(), nil
}

// FindUserByEmail returns nil, nil when no user has the email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[normalize(email)]
	if !ok {
		return nil, nil
	}
	return rec.toUser(), nil
}

// GenerateResetToken stores a password reset token for the user.
func (s *Store) GenerateResetToken(ctx context.Context, email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[normalize(email)]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	rec.resetToken = token
	rec.resetExpires = s.now().Add(resetTokenTTL)
	return token, nil
}

// ResetPassword replaces the password of the user holding token and clears the token.
func (s *Store) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	if token == "" || newPassword == "" {
		return nil, domain.ErrInvalidResetToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.resetToken != token {
			continue
		}
		if !s.now().Before(rec.resetExpires) {
			return nil, domain.ErrInvalidResetToken
		}
		rec.passwordHash = hash
		rec.resetToken = ""
		rec.resetExpires = time.Time{}
		return rec.toUser(), nil
	}
	return nil, domain.ErrInvalidResetToken
}

func (r *record) toUser() *domain.User {
	id := surrealmodels.NewRecordID(userTable, r.id)
	u := &domain.User{ID: &id, Email: r.email}
	if r.resetToken != "" {
		token := r.resetToken
		expires := r.resetExpires.UTC().Format(time.RFC3339)
		u.ResetToken = &token
		u.ResetTokenExpires = &expires
	}
	return u
}
