package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/testutils"
	"github.com/nfrund/signin/internal/view"
	"github.com/stretchr/testify/assert"
)

// sessionContext returns a context that has passed through the session middleware.
func sessionContext(t *testing.T) echo.Context {
	t.Helper()
	var c echo.Context
	mw := session.Middleware(sessions.NewCookieStore([]byte(testutils.SessionSecret)))
	_ = mw(func(ctx echo.Context) error {
		c = ctx
		return nil
	})(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	return c
}

func TestFlashData(t *testing.T) {
	tests := []struct {
		name    string
		set     func(echo.Context)
		success []string
		failure []string
	}{
		{name: "nothing set", set: func(echo.Context) {}},
		{
			name:    "success",
			set:     func(c echo.Context) { view.SetFlashSuccess(c, "You have been signed out.") },
			success: []string{"You have been signed out."},
		},
		{
			name: "errors keep their order",
			set: func(c echo.Context) {
				view.SetFlashError(c, "first")
				view.SetFlashError(c, "second")
			},
			failure: []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sessionContext(t)
			tt.set(c)

			got := view.GetFlashData(c)
			assert.ElementsMatch(t, tt.success, got.Success)
			assert.Equal(t, tt.failure == nil, len(got.Error) == 0)
			if tt.failure != nil {
				assert.Equal(t, tt.failure, got.Error)
			}

			assert.True(t, view.GetFlashData(c).Empty(), "flashes are cleared once read")
		})
	}
}

func TestFlashData_WithoutSessionMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	view.SetFlashError(c, "dropped")
	assert.True(t, view.GetFlashData(c).Empty())
}

func TestFlashData_Empty(t *testing.T) {
	assert.True(t, view.FlashData{}.Empty())
	assert.False(t, view.FlashData{Error: []string{"Please sign in."}}.Empty())
}
