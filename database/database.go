package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// pure-Go driver registered as "sqlite"
	_ "modernc.org/sqlite"
)

type Database struct {
	db           *gorm.DB
	projectRepo  *ProjectRepo
	blogPostRepo *BlogPostRepo
	toolRepo     *ToolRepo
	cvRepo       *CVRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		projectRepo:  NewProjectRepo(db),
		blogPostRepo: NewBlogPostRepo(db),
		toolRepo:     NewToolRepo(db),
		cvRepo:       NewCVRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) ToolRepo() *ToolRepo {
	return d.toolRepo
}

func (d Database) CVRepo() *CVRepo {
	return d.cvRepo
}

// Ping checks the connection is alive.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the four portfolio tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Open connects to the database selected by cfg.Type.
func Open(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		dialector = sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        cfg.URL,
		})
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	if strings.EqualFold(cfg.Type, "sqlite") {
		// sqlite allows one writer; a single connection also keeps :memory: databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// NewGormLogger routes gorm's logger through zerolog.
func NewGormLogger(log zerolog.Logger) logger.Interface {
	return logger.New(
		&log,
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
