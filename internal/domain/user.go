package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
type User struct {
	ID                *surrealmodels.RecordID `json:"id,omitempty"`
	Email             string                  `json:"email"`
	Password          string                  `json:"password,omitempty"`
	Name              *string                 `json:"name,omitempty"`
	ResetToken        *string                 `json:"resetToken,omitempty"`
	ResetTokenExpires *string                 `json:"resetTokenExpires,omitempty"`
}

// IDString returns the record id as "table:id", or "" when unset.
func (u *User) IDString() string {
	if u == nil || u.ID == nil {
		return ""
	}
	return u.ID.String()
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// CreateUser registers a user and returns a session token.
	CreateUser(ctx context.Context, email, password string) (string, error)
	// SignIn verifies the credentials and returns a session token.
	// It returns ErrInvalidCredentials when they do not match.
	SignIn(ctx context.Context, email, password string) (string, error)
	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*User, error)
	// FindUserByEmail returns nil, nil when no user has the email.
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// GenerateResetToken stores a password reset token for the user.
	// It returns ErrUserNotFound for unknown emails.
	GenerateResetToken(ctx context.Context, email string) (string, error)
	// ResetPassword sets a new password for the holder of an unexpired reset
	// token and invalidates the token. It returns ErrInvalidResetToken otherwise.
	ResetPassword(ctx context.Context, token, newPassword string) (*User, error)
}
