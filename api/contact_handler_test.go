package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/stretchr/testify/require"
)

func contactValues() url.Values {
	return url.Values{
		"name":    {"Jane"},
		"email":   {"jane@example.com"},
		"message": {"Hello there"},
	}
}

func TestContactSendsOneEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest("/", contactValues()))
	requireRedirect(t, rec, "/")
	require.Equal(t, []flash.Notice{flash.Success("Message sent successfully! Thank you.")}, env.notices(t, rec))

	require.Equal(t, []services.Email{{
		To:      []string{"owner@example.com"},
		ReplyTo: "jane@example.com",
		Subject: "New message from Jane via Portfolio",
		Body:    "From: Jane\nEmail: jane@example.com\n\nMessage:\nHello there",
	}}, env.mailer.Sent())
}

func TestContactMissingFieldSendsNothing(t *testing.T) {
	for _, field := range []string{"name", "email", "message"} {
		t.Run(field, func(t *testing.T) {
			env := newTestEnv(t)

			values := contactValues()
			values.Set(field, "   ")
			rec := env.do(formRequest("/", values))

			requireRedirect(t, rec, "/")
			require.Equal(t, []flash.Notice{flash.Error("Please fill all fields.")}, env.notices(t, rec))
			require.Empty(t, env.mailer.Sent())
		})
	}
}

func TestContactMailFailureIsShown(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errs.NewMailTransportError(errors.New("dial tcp: connection refused"))

	rec := env.do(formRequest("/", contactValues()))
	requireRedirect(t, rec, "/")
	require.Equal(t, []flash.Notice{flash.Error("Error sending message: dial tcp: connection refused")}, env.notices(t, rec))
}

func TestContactMailConfigMissingIsShown(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.err = errs.NewConfigMissingError("SMTP_HOST")

	rec := env.do(formRequest("/", contactValues()))
	requireRedirect(t, rec, "/")

	notices := env.notices(t, rec)
	require.Len(t, notices, 1)
	require.Equal(t, flash.KindError, notices[0].Kind)
	require.Contains(t, notices[0].Message, "Error sending message:")
	require.Contains(t, notices[0].Message, "SMTP_HOST")
}

func TestContactRateLimited(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) {
		d.ContactLimiter = NewMemoryRateLimiter(1, 1)
	})

	requireRedirect(t, env.do(formRequest("/", contactValues())), "/")

	limited := env.do(formRequest("/", contactValues()))
	requireRedirect(t, limited, "/")
	require.Equal(t, []flash.Notice{flash.Error("Too many messages, please try again later.")}, env.notices(t, limited))
	require.Equal(t, "60", limited.Header().Get("Retry-After"))

	req := formRequest("/", contactValues())
	req.Header.Set("Accept", "application/json")
	rec := env.do(req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	require.Len(t, env.mailer.Sent(), 1)
}

func TestContactRateLimitIgnoresForwardedHeaders(t *testing.T) {
	limiter := NewMemoryRateLimiter(1, 1)
	env := newTestEnv(t, func(d *Dependencies) {
		d.ContactLimiter = limiter
	})

	for i := 0; i < 20; i++ {
		req := formRequest("/", contactValues())
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		req.Header.Set("True-Client-IP", fmt.Sprintf("10.0.2.%d", i))
		requireRedirect(t, env.do(req), "/")
	}

	require.Len(t, env.mailer.Sent(), 1)
	require.Equal(t, 1, limiter.Len())
}

func TestContactRateLimitUsesForwardedHeaderBehindTrustedProxy(t *testing.T) {
	cfg := newTestConfig()
	cfg.Server.TrustedProxy = true
	env := newTestEnvWithConfig(t, cfg, func(d *Dependencies) {
		d.ContactLimiter = NewMemoryRateLimiter(1, 1)
	})

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.1"} {
		req := formRequest("/", contactValues())
		req.Header.Set("X-Forwarded-For", ip)
		requireRedirect(t, env.do(req), "/")
	}

	require.Len(t, env.mailer.Sent(), 2)
}

func TestContactIgnoresQueryString(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(formRequest("/?name=n&email=a@b.c&message=m", url.Values{}))
	requireRedirect(t, rec, "/")
	require.Equal(t, []flash.Notice{flash.Error("Please fill all fields.")}, env.notices(t, rec))
	require.Empty(t, env.mailer.Sent())
}
