package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/internal/rendering"
	"github.com/nfrund/signin/internal/screen"
	"github.com/nfrund/signin/internal/signin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

// gatedAuth holds every call until the test opens the gate.
type gatedAuth struct {
	gate       chan struct{}
	identity   *signin.Identity
	signInErr  error
	recoverErr error
}

func newGatedAuth() *gatedAuth {
	return &gatedAuth{
		gate:     make(chan struct{}),
		identity: &signin.Identity{ID: "user:1", Email: "valid@gmail.com", Token: "session-token"},
	}
}

func (a *gatedAuth) SignIn(ctx context.Context, _ signin.Credentials) (*signin.Identity, error) {
	select {
	case <-a.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if a.signInErr != nil {
		return nil, a.signInErr
	}
	return a.identity, nil
}

func (a *gatedAuth) RecoverPassword(ctx context.Context, _ string) error {
	select {
	case <-a.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.recoverErr
}

// browser replays cookies between requests like a single browser tab.
type browser struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, auth signin.AuthService) *browser {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))

	screens := screen.NewRegistry(auth, time.Minute, nil, signin.WithCallTimeout(2*time.Second))
	h := NewSigninHandler(screens, rendering.NewUniversalRenderer())
	e.GET("/signin", h.Get)
	e.POST("/signin/validate", h.Validate)
	e.POST("/signin/login", h.LoginPost)
	e.POST("/signin/recover-password", h.RecoverPost)
	e.GET("/signin/status", h.Status)
	e.GET("/signin/dismiss", h.Dismiss)

	return &browser{t: t, e: e, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if htmx {
		req.Header.Set(headerHXRequest, "true")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

// pollUntil polls the status endpoint until done accepts a response.
func (b *browser) pollUntil(done func(*httptest.ResponseRecorder) bool) *httptest.ResponseRecorder {
	b.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rec := b.do(http.MethodGet, "/signin/status", nil, true)
		require.Equal(b.t, http.StatusOK, rec.Code)
		if done(rec) {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
	b.t.Fatal("status never reached the expected state")
	return nil
}

func settled(rec *httptest.ResponseRecorder) bool {
	return !strings.Contains(rec.Body.String(), "/signin/status")
}

func TestSigninHandler_Get(t *testing.T) {
	b := newBrowser(t, newGatedAuth())

	rec := b.do(http.MethodGet, "/signin", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-testid="login-button" disabled`)
	assert.Contains(t, body, `data-testid="recover-password-button" disabled`)
	assert.NotContains(t, body, "login-loader")
	assert.NotContains(t, body, "recover-password-loader")
	assert.Contains(t, b.cookies, screenSessionName)
}

func TestSigninHandler_Validate(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		password       string
		loginEnabled   bool
		recoverEnabled bool
		emailError     bool
	}{
		{name: "empty form", loginEnabled: false, recoverEnabled: false},
		{name: "invalid email", email: "invalidEmail", password: "validPassword", emailError: true},
		{name: "valid email without password", email: "valid@gmail.com", recoverEnabled: true},
		{name: "valid form", email: "valid@gmail.com", password: "validPassword", loginEnabled: true, recoverEnabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, newGatedAuth())
			rec := b.do(http.MethodPost, "/signin/validate", credentials(tt.email, tt.password), true)

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Equal(t, !tt.loginEnabled, strings.Contains(body, `data-testid="login-button" disabled`))
			assert.Equal(t, !tt.recoverEnabled, strings.Contains(body, `data-testid="recover-password-button" disabled`))
			assert.Equal(t, tt.emailError, strings.Contains(body, invalidEmailMessage))
		})
	}
}

func TestSigninHandler_Validate_RejectsOversizedInput(t *testing.T) {
	b := newBrowser(t, newGatedAuth())

	rec := b.do(http.MethodPost, "/signin/validate", credentials(strings.Repeat("a", 300)+"@gmail.com", "x"), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email: max")
}

func TestSigninHandler_LoginSuccess(t *testing.T) {
	auth := newGatedAuth()
	b := newBrowser(t, auth)
	b.do(http.MethodGet, "/signin", nil, false)

	rec := b.do(http.MethodPost, "/signin/login", credentials("valid@gmail.com", "validPassword"), true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-testid="login-loader"`)
	assert.NotContains(t, body, "recover-password-loader")
	assert.NotContains(t, body, `data-testid="login-button"`)
	assert.Contains(t, body, `data-testid="recover-password-button" disabled`)
	assert.Contains(t, body, `hx-get="/signin/status"`)

	rec = b.do(http.MethodGet, "/signin/status", nil, true)
	assert.Empty(t, rec.Header().Get(headerHXRedirect), "no navigation while the call is outstanding")

	close(auth.gate)
	rec = b.pollUntil(func(r *httptest.ResponseRecorder) bool { return r.Header().Get(headerHXRedirect) != "" })

	assert.Equal(t, signin.HomeRoute, rec.Header().Get(headerHXRedirect))
	assert.NotContains(t, rec.Body.String(), "notification")
	require.Contains(t, b.cookies, middleware.AuthCookieName)
	assert.Equal(t, "session-token", b.cookies[middleware.AuthCookieName].Value)
}

func TestSigninHandler_LoginFailure(t *testing.T) {
	auth := newGatedAuth()
	auth.signInErr = signin.NewAuthError("anyError", nil)
	b := newBrowser(t, auth)

	b.do(http.MethodPost, "/signin/login", credentials("valid@gmail.com", "validPassword"), true)
	close(auth.gate)

	var toasts strings.Builder
	rec := b.pollUntil(func(r *httptest.ResponseRecorder) bool {
		toasts.WriteString(r.Body.String())
		return settled(r)
	})

	assert.Empty(t, rec.Header().Get(headerHXRedirect))
	assert.Contains(t, toasts.String(), "anyError")
	assert.Contains(t, toasts.String(), ">OK</button>")
	assert.NotContains(t, rec.Body.String(), "login-loader")
	assert.Contains(t, rec.Body.String(), `data-testid="login-button"`)
	assert.NotContains(t, rec.Body.String(), `data-testid="login-button" disabled`)
	assert.NotContains(t, b.cookies, middleware.AuthCookieName)
}

func TestSigninHandler_RecoverPassword(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		dismiss string
	}{
		{name: "success", message: signin.RecoverySentMessage, dismiss: signin.DismissOK},
		{name: "failure", err: signin.NewAuthError("anyError", nil), message: "anyError", dismiss: signin.DismissOke},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newGatedAuth()
			auth.recoverErr = tt.err
			b := newBrowser(t, auth)

			rec := b.do(http.MethodPost, "/signin/recover-password", credentials("valid@gmail.com", ""), true)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `data-testid="recover-password-loader"`)
			assert.NotContains(t, rec.Body.String(), `data-testid="recover-password-button"`)
			assert.NotContains(t, rec.Body.String(), "login-loader")

			close(auth.gate)
			var toasts strings.Builder
			rec = b.pollUntil(func(r *httptest.ResponseRecorder) bool {
				toasts.WriteString(r.Body.String())
				return settled(r)
			})

			assert.Contains(t, toasts.String(), tt.message)
			assert.Contains(t, toasts.String(), ">"+tt.dismiss+"</button>")
			assert.Contains(t, toasts.String(), `hx-trigger="load delay:5000ms"`)
			assert.NotContains(t, rec.Body.String(), "recover-password-loader")
			assert.Contains(t, rec.Body.String(), `data-testid="recover-password-button"`)
			assert.Empty(t, rec.Header().Get(headerHXRedirect))
		})
	}
}

func TestSigninHandler_ActionsWhileBusy(t *testing.T) {
	auth := newGatedAuth()
	b := newBrowser(t, auth)

	b.do(http.MethodPost, "/signin/login", credentials("valid@gmail.com", "validPassword"), true)
	rec := b.do(http.MethodPost, "/signin/recover-password", credentials("valid@gmail.com", "validPassword"), true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login-loader")
	assert.NotContains(t, rec.Body.String(), `data-testid="login-button"`)
	assert.NotContains(t, rec.Body.String(), "recover-password-loader")

	close(auth.gate)
	b.pollUntil(func(r *httptest.ResponseRecorder) bool { return r.Header().Get(headerHXRedirect) != "" })
}

func TestSigninHandler_DisabledLoginIsIgnored(t *testing.T) {
	b := newBrowser(t, newGatedAuth())

	rec := b.do(http.MethodPost, "/signin/login", credentials("invalidEmail", "validPassword"), true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "login-loader")
	assert.Contains(t, rec.Body.String(), `data-testid="login-button" disabled`)
}

func TestSigninHandler_NonHTMXSubmitRedirects(t *testing.T) {
	auth := newGatedAuth()
	b := newBrowser(t, auth)

	rec := b.do(http.MethodPost, "/signin/login", credentials("valid@gmail.com", "validPassword"), false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get(echo.HeaderLocation))

	rec = b.do(http.MethodGet, "/signin", nil, false)
	assert.Contains(t, rec.Body.String(), "login-loader")
	assert.Contains(t, rec.Body.String(), `value="valid@gmail.com"`)
	close(auth.gate)
}

func TestSigninHandler_Dismiss(t *testing.T) {
	b := newBrowser(t, newGatedAuth())

	rec := b.do(http.MethodGet, "/signin/dismiss", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
