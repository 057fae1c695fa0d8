// Package server wires the sign-in application together and runs its HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/signin/internal/authservice"
	"github.com/nfrund/signin/internal/config"
	"github.com/nfrund/signin/internal/database"
	"github.com/nfrund/signin/internal/domain"
	"github.com/nfrund/signin/internal/email"
	"github.com/nfrund/signin/internal/events"
	"github.com/nfrund/signin/internal/handlers"
	"github.com/nfrund/signin/internal/memstore"
	"github.com/nfrund/signin/internal/metrics"
	"github.com/nfrund/signin/internal/middleware"
	"github.com/nfrund/signin/internal/pubsub"
	"github.com/nfrund/signin/internal/rendering"
	"github.com/nfrund/signin/internal/screen"
	"github.com/nfrund/signin/internal/signin"
	"github.com/nfrund/signin/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E       *echo.Echo
	Cfg     config.Provider
	Logger  *slog.Logger
	Users   domain.UserRepository
	Screens *screen.Registry
	Metrics *prometheus.Registry

	bus         pubsub.Bus
	cancel      context.CancelFunc
	closers     []func(context.Context) error
	rateLimiter echo.MiddlewareFunc

	signinHandler *handlers.SigninHandler
	homeHandler   *handlers.HomeHandler
	resetHandler  *handlers.ResetPasswordHandler
}

type options struct {
	logger  *slog.Logger
	users   domain.UserRepository
	emailer domain.EmailSender
}

// Option overrides a dependency New would otherwise build from configuration.
type Option func(*options)

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserRepository replaces the configured auth backend.
func WithUserRepository(users domain.UserRepository) Option {
	return func(o *options) { o.users = users }
}

// WithEmailSender replaces the configured email provider.
func WithEmailSender(sender domain.EmailSender) Option {
	return func(o *options) { o.emailer = sender }
}

// New builds a Server from cfg. Call Shutdown to release its resources.
func New(cfg config.Provider, opts ...Option) (*Server, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Cfg:     cfg,
		Logger:  o.logger,
		Metrics: prometheus.NewRegistry(),
		cancel:  cancel,
	}
	if err := s.build(ctx, o); err != nil {
		_ = s.Shutdown(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Server) build(ctx context.Context, o options) error {
	cfg := s.Cfg

	users, err := s.userRepository(ctx, o.users)
	if err != nil {
		return err
	}
	s.Users = users

	emailer := o.emailer
	if emailer == nil {
		if emailer, err = email.NewEmailService(cfg); err != nil {
			return fmt.Errorf("failed to initialize email service: %w", err)
		}
	}
	authService := authservice.New(users, emailer, cfg.GetAppBaseURL())

	s.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	signinMetrics, err := metrics.New(s.Metrics)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	s.bus = pubsub.NewWatermillBridge(s.Logger.With("component", "pubsub"))
	s.closers = append(s.closers, func(context.Context) error { return s.bus.Close() })
	if err := events.NewAudit(s.Logger).Start(ctx, s.bus); err != nil {
		return fmt.Errorf("failed to start audit subscriber: %w", err)
	}

	s.Screens = screen.NewRegistry(authService, cfg.GetSigninScreenTTL(), signinMetrics,
		signin.WithCallTimeout(cfg.GetSigninCallTimeout()),
		signin.WithObserver(signin.Observers{
			signinMetrics,
			events.NewPublisher(s.bus, s.Logger),
		}),
	)

	s.rateLimiter, err = s.rateLimiterMiddleware()
	if err != nil {
		return err
	}

	renderer := rendering.NewUniversalRenderer()
	s.signinHandler = handlers.NewSigninHandler(s.Screens, renderer)
	s.homeHandler = handlers.NewHomeHandler(renderer)
	s.resetHandler = handlers.NewResetPasswordHandler(authService, renderer)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.Renderer = renderer
	setupErrorHandling(e)

	httpMetrics, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: s.Metrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/static*"
		},
	}.ToMiddleware()
	if err != nil {
		return fmt.Errorf("failed to create http metrics middleware: %w", err)
	}

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.AccessLog(s.Logger))
	e.Use(middleware.Logger(s.Logger))
	e.Use(httpMetrics)
	e.Use(session.Middleware(store))
	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	s.E = e
	return nil
}

func (s *Server) userRepository(ctx context.Context, users domain.UserRepository) (domain.UserRepository, error) {
	if users != nil {
		return users, nil
	}

	cfg := s.Cfg
	switch cfg.GetAuthBackend() {
	case config.BackendMemory:
		s.Logger.Warn("Using the in-memory auth backend; accounts are lost on restart")
		return memstore.New(cfg.GetMemoryTokenSecret()), nil
	case config.BackendSurreal:
		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		return database.NewUserStore(db, cfg.GetDBUrl(), cfg.GetDBNs(), cfg.GetDBDb()), nil
	default:
		return nil, fmt.Errorf("unknown auth backend: %q", cfg.GetAuthBackend())
	}
}

func (s *Server) rateLimiterMiddleware() (echo.MiddlewareFunc, error) {
	limit := s.Cfg.GetRateLimitPerMinute()
	if s.Cfg.GetRedisURL() == "" {
		return middleware.RateLimiter(middleware.NewMemoryLimiterStore(limit)), nil
	}

	redisOpts, err := redis.ParseURL(s.Cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(redisOpts)
	s.closers = append(s.closers, func(context.Context) error { return client.Close() })

	store := middleware.NewRedisLimiterStore(client, limit, time.Minute, s.Logger.With("component", "ratelimit"))
	return middleware.RateLimiter(store), nil
}

// setupErrorHandling logs unhandled errors with a stack trace before
// delegating the response to echo's default handler.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			logger := middleware.FromContext(c.Request().Context())
			logger.Error("Internal Server Error (Unhandled)",
				"error", err.Error(),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
