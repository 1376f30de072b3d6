package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/app"
	"github.com/pjecz/casiopea/pkg/logger"
)

// Config contains database connection options.
type Config struct {
	Driver   string
	Path     string // SQLite database path when Driver == sqlite
	DSN      string // Optional DSN override
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Options  map[string]string
}

// FromAppConfig maps the loaded configuration onto driver options.
func FromAppConfig(cfg app.DatabaseConfig) Config {
	out := Config{Driver: cfg.Driver, Path: cfg.Path, DSN: cfg.DSN}

	var auth app.DBAuthConfig
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		auth = cfg.Postgres
		if auth.SSLMode != "" {
			out.Options = map[string]string{"sslmode": auth.SSLMode}
		}
	case "mysql":
		auth = cfg.MySQL
	default:
		return out
	}

	out.Host = auth.Host
	out.Port = auth.Port
	out.User = auth.Username
	out.Password = auth.Password
	out.Name = auth.Database
	return out
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = "sqlite"
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres", "postgresql":
		db, err = openPostgres(cfg)
	case "mysql":
		db, err = openMySQL(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	logger.WithModule("database").Debug("database opened", zap.String("driver", driver))
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrateAndSeed convenience helper used during application start-up.
func AutoMigrateAndSeed(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := SeedData(ctx, db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	return nil
}
