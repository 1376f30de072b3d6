package database

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/pkg/logger"
)

// schema lists the models in dependency order; Reset drops them in reverse.
func schema() []interface{} {
	return []interface{}{
		&models.Module{},
		&models.Role{},
		&models.User{},
		&models.Permission{},
		&models.UserRole{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(schema()...)
}

// SeedData registers the built-in modules and, on a fresh database, the
// administrator role holding ADMINISTER on each of them.
func SeedData(ctx context.Context, db *gorm.DB) error {
	if err := permissions.Sync(ctx, db); err != nil {
		return err
	}

	created, err := permissions.EnsureAdministrator(ctx, db)
	if err != nil {
		return err
	}
	if created {
		logger.WithModule("database").Info("administrator role created",
			zap.String("role", permissions.AdministratorRole),
		)
	}
	return nil
}

// Reset drops every table and recreates the schema. Built-ins are not re-seeded.
func Reset(db *gorm.DB) error {
	tables := schema()
	var errs error
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("drop %T: %w", tables[i], err))
		}
	}
	if errs != nil {
		return errs
	}
	return AutoMigrate(db)
}
