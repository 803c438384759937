// Package flash carries one-shot notices across a redirect in a signed cookie.
package flash

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie holding pending notices.
const CookieName = "portfolio_flash"

// DefaultLifetime bounds how long a notice survives without being read.
const DefaultLifetime = 5 * time.Minute

const issuer = "portfolio"

var errEmptySecret = errors.New("flash: empty signing secret")

// Kind classifies how a notice is presented.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is one message shown on the next page render.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(message string) Notice { return Notice{Kind: KindSuccess, Message: message} }
func Info(message string) Notice    { return Notice{Kind: KindInfo, Message: message} }
func Error(message string) Notice   { return Notice{Kind: KindError, Message: message} }

type claims struct {
	Notices []Notice `json:"notices"`
	jwt.RegisteredClaims
}

// Store signs and verifies the flash cookie.
type Store struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewStore(secret []byte) *Store {
	return &Store{secret: secret, lifetime: DefaultLifetime, now: time.Now}
}

// Add appends notices to whatever the request already carries and rewrites the cookie.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, notices ...Notice) error {
	pending := append(s.read(r), normalize(notices)...)
	if len(pending) == 0 {
		return nil
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Notices: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)

	// later Adds in the same request see what was queued so far
	r.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	return nil
}

// ReadAndClear returns the pending notices and expires the cookie.
// A tampered or expired cookie yields no notices but is still cleared.
func (s *Store) ReadAndClear(w http.ResponseWriter, r *http.Request) []Notice {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}
	notices := s.read(r)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return notices
}

func (s *Store) read(r *http.Request) []Notice {
	cookie := lastCookie(r)
	if cookie == nil || cookie.Value == "" {
		return nil
	}

	var c claims
	_, err := jwt.ParseWithClaims(cookie.Value, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil
	}
	return normalize(c.Notices)
}

// lastCookie picks the most recently added flash cookie so notices queued
// earlier in the same request win over the one sent by the browser.
func lastCookie(r *http.Request) *http.Cookie {
	var found *http.Cookie
	for _, c := range r.Cookies() {
		if c.Name == CookieName {
			found = c
		}
	}
	return found
}

func normalize(notices []Notice) []Notice {
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		n.Message = strings.TrimSpace(n.Message)
		if n.Message == "" {
			continue
		}
		n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
		switch n.Kind {
		case KindSuccess, KindInfo, KindWarning, KindError:
			out = append(out, n)
		}
	}
	return out
}

// Validate reports whether the store can sign cookies.
func (s *Store) Validate() error {
	if len(s.secret) == 0 {
		return errEmptySecret
	}
	return nil
}
