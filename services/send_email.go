package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

// Email is a single plain-text message.
type Email struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends one message synchronously. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ContactEmail builds the notification for a contact-form submission.
func ContactEmail(recipient, name, email, message string) Email {
	return Email{
		To:      []string{recipient},
		ReplyTo: email,
		Subject: fmt.Sprintf("New message from %s via Portfolio", name),
		Body:    fmt.Sprintf("From: %s\nEmail: %s\n\nMessage:\n%s", name, email, message),
	}
}

// SMTPConfig is what SMTPMailer needs to reach the relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer delivers through an SMTP relay using STARTTLS and PLAIN auth.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send dials the relay, delivers the message and hangs up.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if m.cfg.Host == "" {
		return errs.NewConfigMissingError("SMTP_HOST")
	}
	if m.cfg.From == "" {
		return errs.NewConfigMissingError("SMTP_FROM")
	}

	msg, err := m.buildMessage(email)
	if err != nil {
		return errs.NewMailTransportError(err)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return errs.NewMailTransportError(err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return errs.NewMailTransportError(err)
	}

	log.Info().Strs("to", email.To).Str("subject", email.Subject).Msg("sent email via SMTP")
	return nil
}

func (m *SMTPMailer) buildMessage(email Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Body)
	return msg, nil
}
