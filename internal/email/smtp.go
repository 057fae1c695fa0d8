package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/go-mail/mail"
	"github.com/nfrund/signin/internal/domain"
)

// SMTPSender sends emails through an SMTP relay.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
	// TLSMode is "auto" (STARTTLS when offered), "ssl" or "none".
	TLSMode string
}

// NewSMTPSender creates an SMTPSender negotiating TLS automatically.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
	}
}

// message builds a multipart/alternative message when a text body is present.
func (s *SMTPSender) message(msg domain.Email) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.Text != "":
		m.SetBody("text/plain", msg.Text)
	default:
		m.SetBody("text/html", msg.HTML)
	}
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	}
	return d
}

// Send delivers the email. The SMTP client does not take a context, so
// cancellation is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg domain.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer().DialAndSend(s.message(msg)); err != nil {
		slog.ErrorContext(ctx, "SMTP send failed", "host", s.Host, "to", msg.To, "error", err)
		return fmt.Errorf("smtp send: %w", err)
	}

	slog.InfoContext(ctx, "Successfully sent email via SMTP", "to", msg.To, "subject", msg.Subject)
	return nil
}
