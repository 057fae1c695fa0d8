// Package authservice implements the authentication service behind the
// sign-in screen on top of a user repository and an email sender.
package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/signin/internal/domain"
	"github.com/nfrund/signin/internal/signin"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// User-facing messages.
const (
	MsgInvalidInput       = "Please enter a valid email and password."
	MsgInvalidCredentials = "Invalid email or password."
	MsgSignInUnavailable  = "We could not sign you in right now. Please try again."
	MsgRecoveryFailed     = "We could not start password recovery. Please try again."
	MsgRecoveryNotSent    = "We could not send the recovery email. Please try again."
	MsgResetLinkInvalid   = "This reset link is invalid or has expired. Please request a new one."
	MsgResetFailed        = "We could not reset your password. Please try again."
	MsgPasswordTooShort   = "Password must be at least 8 characters long."
)

// MinPasswordLength applies to passwords chosen through a reset link.
const MinPasswordLength = 8

// ResetPath serves the page a reset link opens.
const ResetPath = "/reset-password"

const resetSubject = "Reset Your Password"

// Service implements signin.AuthService.
type Service struct {
	users    domain.UserRepository
	emailer  domain.EmailSender
	baseURL  string
	validate *validator.Validate
}

var _ signin.AuthService = (*Service)(nil)

// New creates a Service. baseURL is the absolute application URL used in reset links.
func New(users domain.UserRepository, emailer domain.EmailSender, baseURL string) *Service {
	return &Service{
		users:    users,
		emailer:  emailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: validator.New(),
	}
}

// SignIn verifies the credentials and resolves the signed-in identity.
func (s *Service) SignIn(ctx context.Context, creds signin.Credentials) (*signin.Identity, error) {
	if err := s.validate.StructCtx(ctx, creds); err != nil {
		return nil, signin.NewAuthError(MsgInvalidInput, err)
	}

	token, err := s.users.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			slog.WarnContext(ctx, "Failed login attempt", "email", creds.Email)
			return nil, signin.NewAuthError(MsgInvalidCredentials, err)
		}
		slog.ErrorContext(ctx, "Sign in failed", "email", creds.Email, "error", err)
		return nil, signin.NewAuthError(MsgSignInUnavailable, err)
	}

	user, err := s.users.Authenticate(ctx, token)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve signed-in user", "email", creds.Email, "error", err)
		return nil, signin.NewAuthError(MsgSignInUnavailable, err)
	}

	return &signin.Identity{
		ID:    user.IDString(),
		Email: user.Email,
		Token: token,
	}, nil
}

// RecoverPassword emails a reset link. Unknown emails succeed without sending
// anything so the screen cannot be used to discover accounts.
func (s *Service) RecoverPassword(ctx context.Context, email string) error {
	if err := s.validate.VarCtx(ctx, email, "required,email"); err != nil {
		return signin.NewAuthError(MsgInvalidInput, err)
	}

	token, err := s.users.GenerateResetToken(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		slog.InfoContext(ctx, "Password recovery for unknown email, hiding from user", "email", email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error generating reset token", "email", email, "error", err)
		return signin.NewAuthError(MsgRecoveryFailed, err)
	}

	msg, err := s.resetEmail(email, token)
	if err != nil {
		return signin.NewAuthError(MsgRecoveryFailed, err)
	}
	if err := s.emailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to send password reset email", "email", email, "error", err)
		return signin.NewAuthError(MsgRecoveryNotSent, err)
	}
	return nil
}

// ResetLink returns the absolute reset URL for token.
func (s *Service) ResetLink(token string) string {
	return s.baseURL + ResetPath + "?token=" + url.QueryEscape(token)
}

// ResetPassword sets a new password through a reset token and signs the user
// in with it.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*signin.Identity, error) {
	if len(password) < MinPasswordLength {
		return nil, signin.NewAuthError(MsgPasswordTooShort, nil)
	}

	user, err := s.users.ResetPassword(ctx, token, password)
	if errors.Is(err, domain.ErrInvalidResetToken) {
		slog.WarnContext(ctx, "Password reset with an invalid or expired token")
		return nil, signin.NewAuthError(MsgResetLinkInvalid, err)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Password reset failed", "error", err)
		return nil, signin.NewAuthError(MsgResetFailed, err)
	}

	sessionToken, err := s.users.SignIn(ctx, user.Email, password)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sign in after password reset", "email", user.Email, "error", err)
		return nil, signin.NewAuthError(MsgSignInUnavailable, err)
	}
	return &signin.Identity{ID: user.IDString(), Email: user.Email, Token: sessionToken}, nil
}

func (s *Service) resetEmail(to, token string) (domain.Email, error) {
	link := s.ResetLink(token)

	var b strings.Builder
	body := g.Group([]g.Node{
		h.P(g.Text("Click the link below to reset your password:")),
		h.A(h.Href(link), g.Text("Reset Password")),
		h.P(g.Text("If you did not ask for this, you can ignore this email.")),
	})
	if err := body.Render(&b); err != nil {
		return domain.Email{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return domain.Email{
		To:      to,
		Subject: resetSubject,
		HTML:    b.String(),
		Text:    "Reset your password: " + link,
	}, nil
}
