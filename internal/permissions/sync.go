package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/pkg/logger"
)

var moduleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("casiopea/modules"))

// ModuleID returns the stable identifier used for a built-in module.
func ModuleID(name string) string {
	return uuid.NewSHA1(moduleNamespace, []byte(name)).String()
}

// Sync inserts the registered built-in modules that are missing. Existing
// rows keep their status, so a module an administrator deleted stays deleted.
// A built-in is skipped when another active module already owns its name.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)
	log := logger.WithModule("permissions")

	tx := db.WithContext(ctx)
	for _, def := range GetAll() {
		id := ModuleID(def.Name)

		var taken int64
		if err := tx.Model(&models.Module{}).
			Where("name = ? AND status = ? AND id <> ?", def.Name, models.StatusActive, id).
			Count(&taken).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", def.Name, err)
		}
		if taken > 0 {
			log.Debug("built-in module owned by another row", zap.String("name", def.Name))
			continue
		}

		record := models.Module{
			BaseModel:         models.BaseModel{ID: id},
			Name:              def.Name,
			ShortName:         def.ShortName,
			Icon:              def.Icon,
			Route:             def.Route,
			ShownInNavigation: def.ShownInNavigation,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", def.Name, err)
		}
	}

	return nil
}

// EnsureAdministrator creates the administrator role with ADMINISTER on every
// active built-in module. It does nothing once a role with that name exists in
// any status, so later edits by operators are never overwritten.
func EnsureAdministrator(ctx context.Context, db *gorm.DB) (bool, error) {
	if db == nil {
		return false, errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", AdministratorRole).Count(&count).Error; err != nil {
			return fmt.Errorf("permission: lookup administrator role: %w", err)
		}
		if count > 0 {
			return nil
		}

		role := models.Role{Name: AdministratorRole}
		if err := tx.Create(&role).Error; err != nil {
			return fmt.Errorf("permission: create administrator role: %w", err)
		}

		var modules []models.Module
		if err := tx.Where("name IN ? AND status = ?", Names(), models.StatusActive).
			Order("name").Find(&modules).Error; err != nil {
			return fmt.Errorf("permission: load built-in modules: %w", err)
		}

		for _, module := range modules {
			perm := models.Permission{
				RoleID:   role.ID,
				ModuleID: module.ID,
				Level:    int(LevelAdminister),
				Name:     Label(role.Name, module.Name, LevelAdminister),
			}
			if err := tx.Create(&perm).Error; err != nil {
				return fmt.Errorf("permission: grant administrator on %s: %w", module.Name, err)
			}
		}
		created = true
		return nil
	})
	return created, err
}
