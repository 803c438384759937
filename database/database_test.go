package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) Database {
	t.Helper()

	cfg := config.DBConfig{Type: "sqlite", URL: filepath.Join(t.TempDir(), "portfolio.db")}
	db, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return New(db)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(config.DBConfig{Type: "oracle", URL: "x"}, zerolog.Nop())
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	d := newTestDB(t)
	require.NoError(t, d.Ping(context.Background()))
}

func TestProjectRepoFeaturedSplit(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).ProjectRepo()

	featured, err := repo.FindFeatured(ctx)
	require.NoError(t, err)
	require.Nil(t, featured)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, &models.Project{Title: "Compiler", Description: "d", Image: "c.png", Date: day, Featured: true}))
	require.NoError(t, repo.Add(ctx, &models.Project{Title: "Blog engine", Description: "d", Image: "b.png", Date: day}))
	require.NoError(t, repo.Add(ctx, &models.Project{Title: "Shell", Description: "d", Image: "s.png", Date: day.AddDate(0, 1, 0)}))

	featured, err = repo.FindFeatured(ctx)
	require.NoError(t, err)
	require.NotNil(t, featured)
	require.Equal(t, "Compiler", featured.Title)

	rest, err := repo.FindUnfeatured(ctx)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, "Shell", rest[0].Title)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestProjectRepoFindByIDAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).ProjectRepo()

	link := "https://github.com/example/repo"
	p := &models.Project{Title: "T", Description: "D", Image: "t.png", Date: time.Now().UTC(), GithubLink: &link}
	require.NoError(t, repo.Add(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, link, *found.GithubLink)

	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err = repo.FindByID(ctx, p.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestBlogPostRepoNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).BlogPostRepo()

	older := &models.BlogPost{Title: "First", Content: "a", Date: time.Now().Add(-time.Hour)}
	newer := &models.BlogPost{Title: "Second", Content: "b"}
	require.NoError(t, repo.Add(ctx, older))
	require.NoError(t, repo.Add(ctx, newer))
	require.False(t, newer.Date.IsZero())

	posts, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "Second", posts[0].Title)
	require.Equal(t, "First", posts[1].Title)
}

func TestToolRepo(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).ToolRepo()

	logo := "go.png"
	tool := &models.Tool{Name: "Go", ImageFilename: &logo}
	require.NoError(t, repo.Add(ctx, tool))
	require.NoError(t, repo.Add(ctx, &models.Tool{Name: "Ansible"}))

	tools, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	require.Equal(t, "Ansible", tools[0].Name)
	require.Nil(t, tools[0].ImageFilename)

	require.NoError(t, repo.Delete(ctx, tool.ID))
	_, err = repo.FindByID(ctx, tool.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCVRepoLatest(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t).CVRepo()

	latest, err := repo.FindLatest(ctx)
	require.NoError(t, err)
	require.Nil(t, latest)

	require.NoError(t, repo.Add(ctx, &models.CVRecord{Filename: "old.pdf", OriginalName: "old.pdf", UploadDate: time.Now().Add(-time.Hour)}))
	require.NoError(t, repo.Add(ctx, &models.CVRecord{Filename: "new.pdf", OriginalName: "new.pdf"}))

	latest, err = repo.FindLatest(ctx)
	require.NoError(t, err)
	require.Equal(t, "new.pdf", latest.Filename)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, repo.Delete(ctx, latest.ID))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "old.pdf", all[0].Filename)
}
