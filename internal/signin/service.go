package signin

import (
	"context"
	"errors"
	"time"
)

// Route and notification constants used by the sign-in screen.
const (
	HomeRoute = "/home"

	// NotifyDuration is how long a notification stays on screen.
	NotifyDuration = 5 * time.Second

	DismissOK = "OK"
	// DismissOke is the dismiss label of a failed password recovery. It differs
	// from DismissOK in the product copy and is kept as-is until that is settled.
	DismissOke = "Oke"

	RecoverySentMessage = "You can recover your password in your email account."
	genericErrorMessage = "Something went wrong. Please try again."
	timeoutMessage      = "The request timed out. Please try again."
)

var (
	// ErrLoginDisabled is returned when Login is triggered with an invalid form.
	ErrLoginDisabled = errors.New("signin: login is disabled for the current form")
	// ErrRecoverDisabled is returned when RecoverPassword is triggered with an invalid email.
	ErrRecoverDisabled = errors.New("signin: password recovery is disabled for the current email")
	// ErrBusy is returned when an action is triggered while a call is outstanding.
	ErrBusy = errors.New("signin: a request is already in progress")
	// ErrCallTimeout settles a call that outlived the controller's timeout guard.
	ErrCallTimeout = errors.New("signin: authentication call timed out")
)

// Credentials is passed to the authentication service for a sign-in call.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Identity is the user returned by a successful sign-in.
type Identity struct {
	ID    string
	Email string
	// Token is the session token the web layer stores in the auth cookie.
	Token string
}

// AuthService performs credential verification and password-recovery initiation.
// Each call settles exactly once.
type AuthService interface {
	SignIn(ctx context.Context, creds Credentials) (*Identity, error)
	RecoverPassword(ctx context.Context, email string) error
}

// AuthError is the single error kind surfaced to the user.
type AuthError struct {
	Message string
	Err     error
}

// NewAuthError creates an AuthError carrying a user-facing message.
func NewAuthError(message string, err error) *AuthError {
	return &AuthError{Message: message, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// MessageOf returns the user-facing message for an error returned by an AuthService.
func MessageOf(err error) string {
	var authErr *AuthError
	switch {
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	case errors.Is(err, ErrCallTimeout), errors.Is(err, context.DeadlineExceeded):
		return timeoutMessage
	default:
		return genericErrorMessage
	}
}

// Notification is a transient, auto-dismissing message shown to the user.
type Notification struct {
	Message  string
	Dismiss  string
	Duration time.Duration
}

// Notifier surfaces terminal success and failure messages.
type Notifier interface {
	Notify(n Notification)
}

// Navigator changes the current route of the screen.
type Navigator interface {
	NavigateTo(route string)
}
