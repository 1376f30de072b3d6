package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/app"
	"github.com/pjecz/casiopea/internal/database"
	"github.com/pjecz/casiopea/internal/seed"
	"github.com/pjecz/casiopea/pkg/logger"
)

// Env carries the state shared by every command: flags, loaded
// configuration and an open database handle.
type Env struct {
	ConfigPath string
	SeedDir    string
	Verbose    bool

	In  io.Reader
	Out io.Writer
	Err io.Writer

	cfg *app.Config
	db  *gorm.DB
}

// NewEnv returns an Env bound to the process streams.
func NewEnv() *Env {
	return &Env{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Config loads the configuration once and configures logging from it.
func (e *Env) Config() (*app.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}

	cfg, err := app.LoadConfigFrom(e.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	if e.Verbose {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, err
		}
	}
	if dir := strings.TrimSpace(e.SeedDir); dir != "" {
		cfg.Seed.Dir = dir
	}
	e.cfg = cfg
	return cfg, nil
}

// DB opens the configured database and makes sure the schema is current.
func (e *Env) DB(ctx context.Context) (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}

	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(database.FromAppConfig(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.AutoMigrate(db.WithContext(ctx)); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate database: %w", err), database.Close(db))
	}
	e.db = db
	return db, nil
}

// Seeder builds a CSV seeder for the configured directory.
func (e *Env) Seeder(ctx context.Context) (*seed.Seeder, error) {
	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}
	db, err := e.DB(ctx)
	if err != nil {
		return nil, err
	}
	return seed.NewSeeder(db, cfg.Seed.Dir,
		seed.WithDefaultPassword(cfg.Seed.DefaultPassword),
		seed.WithLogger(e.logger()),
	)
}

// Close releases the database handle, if any.
func (e *Env) Close() error {
	if e.db == nil {
		return nil
	}
	err := database.Close(e.db)
	e.db = nil
	return err
}

func (e *Env) logger() *zap.Logger {
	return logger.WithModule("cli")
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}
