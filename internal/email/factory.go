package email

import (
	"fmt"
	"log/slog"

	"github.com/nfrund/signin/internal/config"
	"github.com/nfrund/signin/internal/domain"
)

// NewEmailService creates and returns an email sender based on the configuration.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case "log":
		return NewLogSender(cfg.GetEmailSender(), slog.Default()), nil
	case "resend":
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		return NewResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender()), nil
	case "smtp":
		if cfg.GetSMTPHost() == "" {
			return nil, fmt.Errorf("email provider is 'smtp' but SMTP_HOST is not set")
		}
		s := NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetEmailSender(), cfg.GetSMTPUser(), cfg.GetSMTPPass())
		if mode := cfg.GetSMTPTLSMode(); mode != "" {
			s.TLSMode = mode
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
