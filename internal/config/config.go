package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes the configuration values the application depends on.
// Components take a Provider rather than *Config so tests can stub single values.
type Provider interface {
	GetServerAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetLogFormat() string
	GetLogLevel() string

	GetAuthBackend() string
	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetMemoryTokenSecret() string

	GetEmailProvider() string
	GetEmailSender() string
	GetEmailAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPass() string
	GetSMTPTLSMode() string

	GetRedisURL() string
	GetRateLimitPerMinute() int
	GetSigninCallTimeout() time.Duration
	GetSigninScreenTTL() time.Duration
}

// Auth backends.
const (
	BackendSurreal = "surreal"
	BackendMemory  = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	ServerAddr    string
	AppBaseURL    string
	SessionSecret string
	LogFormat     string
	LogLevel      string

	AuthBackend       string
	DBUrl             string
	DBNs              string
	DBDb              string
	DBUser            string
	DBPass            string
	MemoryTokenSecret string

	EmailProvider string
	EmailSender   string
	EmailAPIKey   string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPTLSMode   string

	RedisURL           string
	RateLimitPerMinute int
	SigninCallTimeout  time.Duration
	SigninScreenTTL    time.Duration
}

// New loads configuration from environment variables, reading a .env file first if one exists.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment, applying defaults.
func FromEnv() *Config {
	return &Config{
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		AuthBackend:       getEnv("AUTH_BACKEND", BackendSurreal),
		DBUrl:             os.Getenv("SURREAL_URL"),
		DBNs:              os.Getenv("SURREAL_NS"),
		DBDb:              os.Getenv("SURREAL_DB"),
		DBUser:            os.Getenv("SURREAL_USER"),
		DBPass:            os.Getenv("SURREAL_PASS"),
		MemoryTokenSecret: os.Getenv("MEMORY_TOKEN_SECRET"),

		EmailProvider: getEnv("EMAIL_PROVIDER", "log"),
		EmailSender:   os.Getenv("EMAIL_SENDER"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPTLSMode:   getEnv("SMTP_TLS_MODE", "auto"),

		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		SigninCallTimeout:  getEnvDuration("SIGNIN_CALL_TIMEOUT", 30*time.Second),
		SigninScreenTTL:    getEnvDuration("SIGNIN_SCREEN_TTL", 30*time.Minute),
	}
}

// Validate reports every missing or inconsistent required value.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is not set"))
	}

	switch c.AuthBackend {
	case BackendSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			errs = append(errs, errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB are required for the surreal backend"))
		}
	case BackendMemory:
		if c.MemoryTokenSecret == "" {
			errs = append(errs, errors.New("MEMORY_TOKEN_SECRET is required for the memory backend"))
		}
	default:
		errs = append(errs, errors.New("AUTH_BACKEND must be 'surreal' or 'memory'"))
	}

	if c.EmailProvider == "smtp" && c.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP_HOST is required when EMAIL_PROVIDER is 'smtp'"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) GetServerAddr() string    { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }
func (c *Config) GetLogFormat() string     { return c.LogFormat }
func (c *Config) GetLogLevel() string      { return c.LogLevel }

func (c *Config) GetAuthBackend() string       { return c.AuthBackend }
func (c *Config) GetDBUrl() string             { return c.DBUrl }
func (c *Config) GetDBNs() string              { return c.DBNs }
func (c *Config) GetDBDb() string              { return c.DBDb }
func (c *Config) GetDBUser() string            { return c.DBUser }
func (c *Config) GetDBPass() string            { return c.DBPass }
func (c *Config) GetMemoryTokenSecret() string { return c.MemoryTokenSecret }

func (c *Config) GetEmailProvider() string { return c.EmailProvider }
func (c *Config) GetEmailSender() string   { return c.EmailSender }
func (c *Config) GetEmailAPIKey() string   { return c.EmailAPIKey }
func (c *Config) GetSMTPHost() string      { return c.SMTPHost }
func (c *Config) GetSMTPPort() int         { return c.SMTPPort }
func (c *Config) GetSMTPUser() string      { return c.SMTPUser }
func (c *Config) GetSMTPPass() string      { return c.SMTPPass }
func (c *Config) GetSMTPTLSMode() string   { return c.SMTPTLSMode }

func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRateLimitPerMinute() int          { return c.RateLimitPerMinute }
func (c *Config) GetSigninCallTimeout() time.Duration { return c.SigninCallTimeout }
func (c *Config) GetSigninScreenTTL() time.Duration   { return c.SigninScreenTTL }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
