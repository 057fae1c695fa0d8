package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/internal/rendering"
	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/pages"
)

// HomeHandler handles the page shown after sign-in.
type HomeHandler struct {
	renderer rendering.Renderer
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(renderer rendering.Renderer) *HomeHandler {
	return &HomeHandler{renderer: renderer}
}

// HomeGet renders the home page for the user placed in the context by middleware.Auth.
func (h *HomeHandler) HomeGet(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
	}
	page := pages.HomePage(auth.HomeData{Email: user.Email}, view.GetFlashData(c))
	return h.renderer.RenderPage(c, http.StatusOK, page)
}

// Logout clears the auth cookie and returns to the sign-in screen.
func (h *HomeHandler) Logout(c echo.Context) error {
	middleware.ClearAuthCookie(c)
	view.SetFlashSuccess(c, "You have been signed out.")
	return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
}
