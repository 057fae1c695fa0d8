package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/internal/rendering"
	"github.com/nfrund/signin/internal/signin"
	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/pages"
)

const (
	missingTokenMessage     = "A valid reset link is required to change your password."
	passwordMismatchMessage = "Passwords do not match."
	resetSucceededMessage   = "Your password has been reset. You are now signed in."
)

// PasswordResetter sets a new password through a reset token and signs the user in.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, password string) (*signin.Identity, error)
}

// ResetPasswordHandler serves the page opened from a recovery email.
type ResetPasswordHandler struct {
	resetter PasswordResetter
	renderer rendering.Renderer
}

// NewResetPasswordHandler creates a ResetPasswordHandler.
func NewResetPasswordHandler(resetter PasswordResetter, renderer rendering.Renderer) *ResetPasswordHandler {
	return &ResetPasswordHandler{resetter: resetter, renderer: renderer}
}

// Get renders the new-password form (GET /reset-password?token=...).
func (h *ResetPasswordHandler) Get(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		view.SetFlashError(c, missingTokenMessage)
		return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
	}
	page := pages.ResetPasswordPage(auth.ResetPasswordData{Token: token}, view.GetFlashData(c))
	return h.renderer.RenderPage(c, http.StatusOK, page)
}

// Post sets the new password, signs the user in and continues to the home page.
func (h *ResetPasswordHandler) Post(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Token == "" {
		view.SetFlashError(c, missingTokenMessage)
		return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
	}
	back := pages.ResetPasswordPath + "?token=" + url.QueryEscape(req.Token)

	if err := c.Validate(&req); err != nil {
		view.SetFlashError(c, resetFormMessage(err))
		return c.Redirect(http.StatusSeeOther, back)
	}

	identity, err := h.resetter.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Password reset rejected", "error", err)
		view.SetFlashError(c, signin.MessageOf(err))
		return c.Redirect(http.StatusSeeOther, back)
	}

	middleware.SetAuthCookie(c, identity.Token)
	view.SetFlashSuccess(c, resetSucceededMessage)
	return c.Redirect(http.StatusSeeOther, signin.HomeRoute)
}

func resetFormMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "password_confirm" {
		return passwordMismatchMessage
	}
	return describeValidation(err)
}
