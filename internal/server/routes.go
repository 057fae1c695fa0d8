package server

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/signin/internal/handlers"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/web/src/templates/pages"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	auth := middleware.Auth(s.Users)

	s.E.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, middleware.SigninPath)
	})

	s.E.GET(middleware.SigninPath, s.signinHandler.Get)
	s.E.POST(pages.ValidatePath, s.signinHandler.Validate)
	s.E.POST(pages.LoginPath, s.signinHandler.LoginPost, s.rateLimiter)
	s.E.POST(pages.RecoverPath, s.signinHandler.RecoverPost, s.rateLimiter)
	s.E.GET(pages.StatusPath, s.signinHandler.Status)
	s.E.GET(pages.DismissPath, s.signinHandler.Dismiss)

	s.E.GET(pages.ResetPasswordPath, s.resetHandler.Get)
	s.E.POST(pages.ResetPasswordPath, s.resetHandler.Post, s.rateLimiter)

	s.E.GET("/home", s.homeHandler.HomeGet, auth)
	s.E.POST("/logout", s.homeHandler.Logout)

	s.E.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handlers.HealthResponse{Status: "ok", Screens: s.Screens.Count()})
	})
	s.E.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.Metrics}))
}
