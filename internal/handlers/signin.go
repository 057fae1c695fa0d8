package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/internal/rendering"
	"github.com/nfrund/signin/internal/screen"
	"github.com/nfrund/signin/internal/signin"
	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/pages"
	g "maragu.dev/gomponents"
)

const (
	screenSessionName = "signin-session"
	screenKey         = "screen_id"

	headerHXRequest  = "HX-Request"
	headerHXRedirect = "HX-Redirect"

	invalidEmailMessage = "Enter a valid email address."
	welcomeMessage      = "Welcome back, %s."
)

// SigninHandler serves the sign-in screen and its htmx fragments.
type SigninHandler struct {
	screens  *screen.Registry
	renderer rendering.Renderer
}

// NewSigninHandler creates a SigninHandler.
func NewSigninHandler(screens *screen.Registry, renderer rendering.Renderer) *SigninHandler {
	return &SigninHandler{screens: screens, renderer: renderer}
}

// screenFor returns the screen mounted for this browser session, mounting a
// new one if there is none or it expired.
func (h *SigninHandler) screenFor(c echo.Context) (*screen.Screen, error) {
	sess, err := session.Get(screenSessionName, c)
	if err != nil {
		return nil, fmt.Errorf("failed to load screen session: %w", err)
	}
	if id, ok := sess.Values[screenKey].(string); ok {
		if s, ok := h.screens.Get(id); ok {
			return s, nil
		}
	}

	s := h.screens.Mount()
	sess.Values[screenKey] = s.ID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return nil, fmt.Errorf("failed to save screen session: %w", err)
	}
	middleware.FromContext(c.Request().Context()).Debug("Mounted sign-in screen", "screen_id", s.ID)
	return s, nil
}

func (h *SigninHandler) unmount(c echo.Context, s *screen.Screen) {
	h.screens.Unmount(s.ID)
	if sess, err := session.Get(screenSessionName, c); err == nil {
		delete(sess.Values, screenKey)
		_ = sess.Save(c.Request(), c.Response())
	}
}

// bindForm copies the submitted form into the screen's controller.
func (h *SigninHandler) bindForm(c echo.Context, s *screen.Screen) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid sign-in form: "+describeValidation(err)).SetInternal(err)
	}
	s.Controller.SetForm(signin.Form{Email: req.Email, Password: req.Password})
	return nil
}

// Get renders the sign-in screen (GET /signin).
func (h *SigninHandler) Get(c echo.Context) error {
	s, err := h.screenFor(c)
	if err != nil {
		return err
	}
	// The password input is always rendered empty.
	s.Controller.SetPassword("")

	page := pages.SigninPage(signinData(s.Controller.State()), view.GetFlashData(c), notificationData(s.Drain()))
	return h.renderer.RenderPage(c, http.StatusOK, page)
}

// Validate re-renders the controls after a field edit (POST /signin/validate).
func (h *SigninHandler) Validate(c echo.Context) error {
	s, err := h.screenFor(c)
	if err != nil {
		return err
	}
	if err := h.bindForm(c, s); err != nil {
		return err
	}
	return h.renderControls(c, s.Controller.State(), nil)
}

// LoginPost starts a sign-in call (POST /signin/login).
func (h *SigninHandler) LoginPost(c echo.Context) error {
	return h.trigger(c, signin.ActionLogin)
}

// RecoverPost starts a password-recovery call (POST /signin/recover-password).
func (h *SigninHandler) RecoverPost(c echo.Context) error {
	return h.trigger(c, signin.ActionRecoverPassword)
}

func (h *SigninHandler) trigger(c echo.Context, action signin.Action) error {
	s, err := h.screenFor(c)
	if err != nil {
		return err
	}
	if err := h.bindForm(c, s); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if action == signin.ActionLogin {
		err = s.Controller.Login(ctx)
	} else {
		err = s.Controller.RecoverPassword(ctx)
	}
	switch {
	case err == nil:
	case errors.Is(err, signin.ErrBusy), errors.Is(err, signin.ErrLoginDisabled), errors.Is(err, signin.ErrRecoverDisabled):
		// The controls re-render in their current state.
		middleware.FromContext(ctx).Debug("Ignored sign-in action", "action", action, "reason", err)
	default:
		return err
	}

	if c.Request().Header.Get(headerHXRequest) == "" {
		return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
	}
	return h.renderControls(c, s.Controller.State(), nil)
}

// Status reports progress of an outstanding call and delivers its side
// effects (GET /signin/status).
func (h *SigninHandler) Status(c echo.Context) error {
	s, err := h.screenFor(c)
	if err != nil {
		return err
	}

	// State is read before draining: a settled phase implies its
	// notification or route is already queued.
	state := s.Controller.State()
	notes := s.Drain()

	if route := s.TakeRoute(); route != "" {
		if identity := s.Controller.Identity(); identity != nil {
			middleware.SetAuthCookie(c, identity.Token)
			view.SetFlashSuccess(c, fmt.Sprintf(welcomeMessage, identity.Email))
		}
		h.unmount(c, s)
		c.Response().Header().Set(headerHXRedirect, route)
	}
	return h.renderControls(c, state, notes)
}

// Dismiss acknowledges a dismissed notification (GET /signin/dismiss).
func (h *SigninHandler) Dismiss(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *SigninHandler) renderControls(c echo.Context, state signin.State, notes []signin.Notification) error {
	fragment := g.Group{pages.SigninControls(signinData(state))}
	if len(notes) > 0 {
		fragment = append(fragment, pages.Toasts(notificationData(notes)))
	}
	return h.renderer.RenderPage(c, http.StatusOK, fragment)
}

func signinData(s signin.State) auth.SigninData {
	data := auth.SigninData{
		Email:                s.Form.Email,
		IsLoginIn:            s.IsLoginIn,
		IsRecoveringPassword: s.IsRecoveringPassword,
		LoginEnabled:         s.LoginEnabled,
		RecoverEnabled:       s.RecoverEnabled,
	}
	if s.Form.Email != "" && !signin.EmailValid(s.Form.Email) {
		data.EmailError = invalidEmailMessage
	}
	return data
}

func notificationData(notes []signin.Notification) []auth.NotificationData {
	if len(notes) == 0 {
		return nil
	}
	out := make([]auth.NotificationData, 0, len(notes))
	for _, n := range notes {
		out = append(out, auth.NotificationData{
			ID:       uuid.NewString(),
			Message:  n.Message,
			Dismiss:  n.Dismiss,
			Duration: n.Duration,
		})
	}
	return out
}
