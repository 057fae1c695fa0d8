package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/domain"
	"github.com/nfrund/signin/internal/view"
)

const (
	UserContextKey = "user"
	AuthCookieName = "auth_token"
	SigninPath     = "/signin"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth protects routes that require a signed-in user, redirecting everyone else to the sign-in screen.
func Auth(users Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				view.SetFlashError(c, "Please sign in to continue.")
				return c.Redirect(http.StatusSeeOther, SigninPath)
			}

			user, err := users.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil || user == nil {
				FromContext(c.Request().Context()).Info("Rejected session token", "error", err)
				ClearAuthCookie(c)
				view.SetFlashError(c, "Your session has expired. Please sign in again.")
				return c.Redirect(http.StatusSeeOther, SigninPath)
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// SetAuthCookie stores token in the auth cookie.
func SetAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.IsTLS(),
	})
}

// ClearAuthCookie expires the auth cookie.
func ClearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:   AuthCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// UserFrom returns the user stored by Auth.
func UserFrom(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok
}
