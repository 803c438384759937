package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/stretchr/testify/require"
)

func TestContactEmail(t *testing.T) {
	email := ContactEmail("owner@example.com", "Jane", "jane@example.com", "Hello there")

	require.Equal(t, []string{"owner@example.com"}, email.To)
	require.Equal(t, "jane@example.com", email.ReplyTo)
	require.Equal(t, "New message from Jane via Portfolio", email.Subject)
	require.Equal(t, "From: Jane\nEmail: jane@example.com\n\nMessage:\nHello there", email.Body)
}

func TestBuildMessageHeaders(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "site@example.com"})

	msg, err := m.buildMessage(ContactEmail("owner@example.com", "Jane", "jane@example.com", "Hi"))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	require.Contains(t, raw, "Subject: New message from Jane via Portfolio")
	require.Contains(t, raw, "Reply-To:")
	require.Contains(t, raw, "jane@example.com")
	require.Contains(t, raw, "owner@example.com")
	require.Contains(t, raw, "site@example.com")
}

func TestBuildMessageRejectsBadAddresses(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "site@example.com"})

	_, err := m.buildMessage(Email{Subject: "s", Body: "b"})
	require.Error(t, err)

	_, err = m.buildMessage(ContactEmail("owner@example.com", "Jane", "not an address", "Hi"))
	require.Error(t, err)
}

func TestSendWithoutHostIsConfigError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "site@example.com"})

	err := m.Send(context.Background(), ContactEmail("owner@example.com", "Jane", "jane@example.com", "Hi"))
	require.True(t, errs.IsConfigMissingError(err))
}

func TestSendTransportFailure(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{
		Host:    "127.0.0.1",
		Port:    1,
		From:    "site@example.com",
		Timeout: time.Second,
	})

	err := m.Send(context.Background(), ContactEmail("owner@example.com", "Jane", "jane@example.com", "Hi"))
	require.Error(t, err)
	require.True(t, errs.IsMailTransportError(err))
}
