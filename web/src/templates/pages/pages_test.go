package pages

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestSigninControls_Idle(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{}))

	assert.Contains(t, out, `data-testid="login-button" disabled`)
	assert.Contains(t, out, `data-testid="recover-password-button" disabled`)
	assert.NotContains(t, out, "loader")
	assert.NotContains(t, out, StatusPath)
}

func TestSigninControls_Enabled(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{LoginEnabled: true, RecoverEnabled: true}))

	assert.NotContains(t, out, "disabled")
}

func TestSigninControls_LoggingIn(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{IsLoginIn: true}))

	assert.Contains(t, out, `data-testid="login-loader"`)
	assert.NotContains(t, out, `data-testid="login-button"`)
	assert.NotContains(t, out, `data-testid="recover-password-loader"`)
	assert.Contains(t, out, `data-testid="recover-password-button" disabled`)
	assert.Contains(t, out, `hx-get="`+StatusPath+`"`)
	assert.Contains(t, out, `hx-trigger="`+pollTrigger+`"`)
}

func TestSigninControls_Recovering(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{IsRecoveringPassword: true}))

	assert.Contains(t, out, `data-testid="recover-password-loader"`)
	assert.NotContains(t, out, `data-testid="recover-password-button"`)
	assert.NotContains(t, out, `data-testid="login-loader"`)
	assert.Contains(t, out, `data-testid="login-button" disabled`)
}

func TestSigninControls_ButtonReturnsAfterFailure(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{LoginEnabled: true, RecoverEnabled: true}))

	assert.Contains(t, out, `data-testid="login-button"`)
	assert.Contains(t, out, `data-testid="recover-password-button"`)
	assert.NotContains(t, out, "loader")
	assert.NotContains(t, out, StatusPath)
}

func TestSigninControls_FieldErrors(t *testing.T) {
	out := render(t, SigninControls(auth.SigninData{EmailError: "Enter a valid email address."}))

	assert.Contains(t, out, `data-testid="email-error"`)
	assert.Contains(t, out, "Enter a valid email address.")
	assert.NotContains(t, out, `data-testid="password-error"`)
}

func TestSigninPage(t *testing.T) {
	out := render(t, SigninPage(auth.SigninData{Email: "valid@gmail.com"}, view.FlashData{}, []auth.NotificationData{{ID: "7", Message: "anyError", Dismiss: "OK"}}))

	assert.Contains(t, out, `id="`+FormID+`"`)
	assert.Contains(t, out, `value="valid@gmail.com"`)
	assert.Contains(t, out, `data-testid="email-input"`)
	assert.Contains(t, out, `data-testid="password-input"`)
	assert.Contains(t, out, `id="`+ControlsID+`"`)
	assert.Contains(t, out, `id="toast-7"`)
	assert.NotContains(t, out, "hx-swap-oob")
}

func TestToasts(t *testing.T) {
	assert.Nil(t, Toasts(nil))

	out := render(t, Toasts([]auth.NotificationData{{ID: "1", Message: "anyError", Dismiss: "OK", Duration: 5 * time.Second}}))

	assert.Contains(t, out, `hx-swap-oob="beforeend"`)
	assert.Contains(t, out, `id="toast-1"`)
	assert.Contains(t, out, "anyError")
	assert.Contains(t, out, ">OK</button>")
	assert.Contains(t, out, `hx-trigger="load delay:5000ms"`)
	assert.Contains(t, out, `hx-swap="delete"`)
}

func TestHomePage(t *testing.T) {
	out := render(t, HomePage(auth.HomeData{Email: "valid@gmail.com"}, view.FlashData{}))

	assert.Contains(t, out, "You are signed in as valid@gmail.com.")
	assert.Contains(t, out, `action="/logout"`)
}

func TestResetPasswordPage(t *testing.T) {
	var b strings.Builder
	require.NoError(t, ResetPasswordPage(auth.ResetPasswordData{Token: "abc123"}, view.FlashData{Error: []string{"Passwords do not match."}}).Render(context.Background(), &b))
	out := b.String()

	assert.Contains(t, out, `action="`+ResetPasswordPath+`"`)
	assert.Contains(t, out, `name="token" value="abc123"`)
	assert.Contains(t, out, `data-testid="password-input"`)
	assert.Contains(t, out, `data-testid="password_confirm-input"`)
	assert.Contains(t, out, "Passwords do not match.")
}
