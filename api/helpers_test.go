package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/flash"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) Sent() []services.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.Email(nil), m.sent...)
}

type testEnv struct {
	router http.Handler
	db     database.Database
	files  *services.FileStore
	flash  *flash.Store
	mailer *recordingMailer
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", Environment: "test"},
		DB:      config.DBConfig{Type: "sqlite"},
		SMTP:    config.SMTPConfig{From: "site@example.com", Recipient: "owner@example.com"},
		Uploads: config.UploadConfig{MaxUploadMB: 1},
	}
}

func newTestEnv(t *testing.T, opts ...func(*Dependencies)) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, newTestConfig(), opts...)
}

func newTestEnvWithConfig(t *testing.T, cfg *config.Config, opts ...func(*Dependencies)) *testEnv {
	t.Helper()

	gormDB, err := database.Open(config.DBConfig{Type: "sqlite", URL: filepath.Join(t.TempDir(), "portfolio.db")}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB))
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	root := t.TempDir()
	files, err := services.NewFileStore(
		filepath.Join(root, "images"),
		filepath.Join(root, "cvs"),
		filepath.Join(root, "tools"),
	)
	require.NoError(t, err)

	env := &testEnv{
		db:     database.New(gormDB),
		files:  files,
		flash:  flash.NewStore([]byte("test-secret")),
		mailer: &recordingMailer{},
	}

	deps := Dependencies{
		Database: env.db,
		Files:    env.files,
		Mailer:   env.mailer,
		Flash:    env.flash,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	router, err := newRouter(cfg, deps)
	require.NoError(t, err)
	env.router = router
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// getJSON fetches a page as JSON and decodes its data field into out.
func (e *testEnv) getJSON(t *testing.T, path string, out any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	rec := e.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// notices reads back the flash cookie a response set.
func (e *testEnv) notices(t *testing.T, rec *httptest.ResponseRecorder) []flash.Notice {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName && c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return e.flash.ReadAndClear(httptest.NewRecorder(), req)
}

type upload struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, location, rec.Header().Get("Location"))
}
