package domain

import "context"

// Email is an outgoing message. Text is optional; senders that support
// multipart messages add it as the plain-text alternative.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender defines the interface for sending emails. This allows for
// different implementations (e.g., for logging, Resend, SMTP).
type EmailSender interface {
	Send(ctx context.Context, msg Email) error
}
