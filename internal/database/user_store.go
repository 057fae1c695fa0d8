package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nfrund/signin/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// accessMethod is the SurrealDB record access method users sign in through.
const accessMethod = "account"

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 24 * time.Hour

// UserStore implements domain.UserRepository on SurrealDB.
//
// Record-access sign-in and token authentication change the auth state of the
// connection they run on, so they use a short-lived connection of their own
// and leave the shared root connection untouched.
type UserStore struct {
	db     *surrealdb.DB
	url    string
	ns     string
	dbName string
}

// NewUserStore creates a new UserStore. db is the root connection; url is used
// to open per-call record-access connections.
func NewUserStore(db *surrealdb.DB, url, ns, dbName string) *UserStore {
	return &UserStore{db: db, url: url, ns: ns, dbName: dbName}
}

func (s *UserStore) accessParams(email, password string) map[string]interface{} {
	return map[string]interface{}{
		"ns":       s.ns,
		"db":       s.dbName,
		"ac":       accessMethod,
		"email":    email,
		"password": password,
	}
}

// withSession runs fn on a fresh connection that is closed afterwards.
func (s *UserStore) withSession(ctx context.Context, fn func(*surrealdb.DB) error) error {
	conn, err := surrealdb.FromEndpointURLString(ctx, s.url)
	if err != nil {
		return fmt.Errorf("failed to open session connection: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))
	return fn(conn)
}

// CreateUser signs a new user up through the record access method.
func (s *UserStore) CreateUser(ctx context.Context, email, password string) (string, error) {
	var token string
	err := s.withSession(ctx, func(conn *surrealdb.DB) error {
		var err error
		token, err = conn.SignUp(ctx, s.accessParams(email, password))
		return err
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return "", domain.ErrUserAlreadyExists
		}
		return "", fmt.Errorf("sign up failed: %w", err)
	}

	slog.InfoContext(ctx, "Successfully signed up user", "email", email)
	return token, nil
}

// SignIn verifies the credentials through the record access method.
func (s *UserStore) SignIn(ctx context.Context, email, password string) (string, error) {
	var token string
	err := s.withSession(ctx, func(conn *surrealdb.DB) error {
		var err error
		token, err = conn.SignIn(ctx, s.accessParams(email, password))
		return err
	})
	if err != nil {
		if isAuthFailure(err) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("sign in failed: %w", err)
	}
	if token == "" {
		return "", domain.ErrInvalidCredentials
	}
	return token, nil
}

// isAuthFailure distinguishes rejected credentials from transport errors.
func isAuthFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "no record was returned") ||
		strings.Contains(msg, "invalid")
}

// Authenticate validates a session token and returns the associated user.
func (s *UserStore) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	var user *domain.User
	err := s.withSession(ctx, func(conn *surrealdb.DB) error {
		if err := conn.Authenticate(ctx, token); err != nil {
			return domain.ErrInvalidToken
		}
		if err := conn.Use(ctx, s.ns, s.dbName); err != nil {
			return fmt.Errorf("failed to set database scope: %w", err)
		}
		users, err := selectRows[domain.User](ctx, conn, "SELECT * FROM $auth", nil)
		if err != nil {
			return fmt.Errorf("failed to get authenticated user: %w", err)
		}
		if len(users) == 0 || users[0].ID == nil {
			return domain.ErrInvalidToken
		}
		user = &users[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// FindUserByEmail queries for a single user by their email address.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := selectFirst[domain.User](ctx, s.db, "SELECT * FROM user WHERE email = $email", map[string]any{"email": email})
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return user, nil
}

// GenerateResetToken creates a secure reset token and sets its expiration.
// The expiration is stored as an RFC3339 string produced by Go.
func (s *UserStore) GenerateResetToken(ctx context.Context, email string) (string, error) {
	user, err := s.FindUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error finding user: %w", err)
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(ResetTokenTTL).Format(time.RFC3339)

	query := `
		UPDATE $id SET
			resetToken = $reset_token,
			resetTokenExpires = $expires
	`
	params := map[string]any{
		"id":          user.ID,
		"reset_token": token,
		"expires":     expires,
	}
	if err := exec(ctx, s.db, query, params); err != nil {
		return "", fmt.Errorf("failed to update user with reset token: %w", err)
	}

	slog.DebugContext(ctx, "Stored reset token for user", "user_id", user.IDString(), "expires", expires)
	return token, nil
}

// ResetPassword sets the new password for the user holding an unexpired token
// and clears the token in the same statement.
func (s *UserStore) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	if token == "" || newPassword == "" {
		return nil, domain.ErrInvalidResetToken
	}

	query := `
		UPDATE user SET
			password = crypto::argon2::generate($password),
			resetToken = NONE,
			resetTokenExpires = NONE
		WHERE resetToken = $target_token AND type::datetime(resetTokenExpires) > time::now()
		RETURN AFTER
	`
	params := map[string]any{
		"target_token": token,
		"password":     newPassword,
	}
	users, err := selectRows[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrInvalidResetToken
	}

	user := &users[0]
	user.Password = ""
	slog.InfoContext(ctx, "Reset password", "user_id", user.IDString())
	return user, nil
}

// generateSecureToken creates a cryptographically secure random hex token.
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
