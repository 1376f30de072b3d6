package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/api"
	"github.com/pjecz/casiopea/internal/app"
	"github.com/pjecz/casiopea/internal/app/maintenance"
	iauth "github.com/pjecz/casiopea/internal/auth"
	"github.com/pjecz/casiopea/internal/database"
	"github.com/pjecz/casiopea/internal/seed"
	"github.com/pjecz/casiopea/internal/services"
)

// runtimeStack bundles long-lived resources used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	JWT     *iauth.JWTService
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime opens the database, applies migrations and built-in data,
// optionally loads the CSV seed and builds the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return nil, errors.New("auth.jwt.secret must be configured")
	}

	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.SeedOnStartup {
		if err := seedOnStartup(ctx, stack.DB, cfg, log); err != nil {
			return nil, err
		}
	}

	stack.JWT, err = iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	auditSvc, err := services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}
	stack.Cleaner = maintenance.NewCleaner(auditSvc, cfg.Audit.RetentionDays,
		maintenance.WithAuditSchedule(cfg.Audit.CleanupSchedule))
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(stack.DB, stack.JWT, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases resources held by the stack.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}
	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		s.Cleaner = nil
	}
	if s.DB == nil {
		return
	}
	if err := database.Close(s.DB); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
	s.DB = nil
}

func initialiseDatabase(ctx context.Context, cfg *app.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := database.FromAppConfig(cfg.Database)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log.Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func seedOnStartup(ctx context.Context, db *gorm.DB, cfg *app.Config, log *zap.Logger) error {
	seeder, err := seed.NewSeeder(db, cfg.Seed.Dir, seed.WithDefaultPassword(cfg.Seed.DefaultPassword))
	if err != nil {
		return fmt.Errorf("initialise seeder: %w", err)
	}
	results, err := seeder.All(ctx)
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	log.Info("seed loaded", zap.String("dir", cfg.Seed.Dir), zap.Int("steps", len(results)))
	return nil
}
