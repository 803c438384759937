package models

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "models.db")
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestColumnMismatchReport(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&Project{}, &BlogPost{}, &Tool{}))
	require.NoError(t, db.Exec("ALTER TABLE projects ADD COLUMN legacy_slug text").Error)

	report, err := ColumnMismatchReport(db)
	require.NoError(t, err)
	require.Len(t, report, 4)

	byTable := map[string]TableMismatch{}
	for _, entry := range report {
		byTable[entry.Table] = entry
	}

	require.Equal(t, []string{"legacy_slug"}, byTable["projects"].Columns)
	require.Empty(t, byTable["blog_posts"].Columns)
	require.True(t, byTable["cv_records"].Missing)

	var out bytes.Buffer
	WriteColumnMismatchReport(&out, report)
	require.Contains(t, out.String(), "  - legacy_slug")
	require.Contains(t, out.String(), "Total mismatched columns across all tables: 1")
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "zeta", "title", "alpha"}, []string{"id", "title"})
	require.Equal(t, []string{"alpha", "zeta"}, got)
}

func TestBeforeCreateAssignsID(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(All()...))

	cv := &CVRecord{Filename: "cv.pdf", OriginalName: "My CV.pdf"}
	require.NoError(t, db.Create(cv).Error)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", cv.ID.String())
	require.False(t, cv.UploadDate.IsZero())
}
