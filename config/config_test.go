package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("SMTP_FROM", "me@example.com")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	require.Equal(t, 180*time.Second, cfg.Server.ReadTimeout())
	require.Equal(t, "static/images", cfg.Uploads.ImagesDir)
	require.Equal(t, "static/cvs", cfg.Uploads.CVsDir)
	require.Equal(t, "static/tools", cfg.Uploads.ToolsDir)
	require.Equal(t, int64(16<<20), cfg.Uploads.MaxUploadBytes())
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, "me@example.com", cfg.SMTP.ContactRecipient())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio")
	t.Setenv("PORT", "9090")
	t.Setenv("CONTACT_RECIPIENT", "inbox@example.com")
	t.Setenv("ACCEPTED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SMTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	require.Equal(t, "inbox@example.com", cfg.SMTP.ContactRecipient())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AcceptedOrigins)
	require.Equal(t, 3*time.Second, cfg.SMTP.Timeout())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DB: DBConfig{Type: "mysql", URL: "x"}}
	require.Error(t, cfg.Validate())

	cfg = &Config{DB: DBConfig{Type: "sqlite"}}
	require.Error(t, cfg.Validate())

	cfg = &Config{DB: DBConfig{Type: "SQLite", URL: "portfolio.db"}}
	require.NoError(t, cfg.Validate())
}
