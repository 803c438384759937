package errs

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Outbound service errors
var (
	ErrMailTransport     = errors.New("mail transport failed")
	ErrConfigMissing     = errors.New("configuration missing")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// NewMailTransportError wraps a failure talking to the SMTP relay.
func NewMailTransportError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrMailTransport,
		Details:    fmt.Sprintf("Error sending message: %v", cause),
		Cause:      cause,
	}
}

func NewConfigMissingError(key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("%s is not configured", key),
		Field:      key,
	}
}

func NewRateLimitError(service string, retryAfter time.Duration) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusTooManyRequests,
		err:        ErrRateLimitExceeded,
		Details:    fmt.Sprintf("Too many %s requests, retry after %v", service, retryAfter),
		Field:      "rate_limit",
	}
}

func IsMailTransportError(err error) bool {
	return errors.Is(err, ErrMailTransport)
}

func IsConfigMissingError(err error) bool {
	return errors.Is(err, ErrConfigMissing)
}
