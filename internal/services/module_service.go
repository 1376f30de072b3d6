package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/metrics"
	"github.com/pjecz/casiopea/pkg/safestring"
)

// RegisterModuleInput describes a new module.
type RegisterModuleInput struct {
	Name              string
	ShortName         string
	Icon              string
	Route             string
	ShownInNavigation bool
}

// UpdateModuleInput enumerates mutable module attributes; nil fields are left untouched.
type UpdateModuleInput struct {
	Name              *string
	ShortName         *string
	Icon              *string
	Route             *string
	ShownInNavigation *bool
}

// ModuleService maintains the module registry and its lifecycle cascades.
type ModuleService struct {
	db *gorm.DB
}

// NewModuleService constructs a ModuleService using the provided database handle.
func NewModuleService(db *gorm.DB) (*ModuleService, error) {
	if db == nil {
		return nil, errors.New("module service: db is required")
	}
	return &ModuleService{db: db}, nil
}

// Register creates an active module. The name is stored in canonical upper case.
func (s *ModuleService) Register(ctx context.Context, input RegisterModuleInput) (*models.Module, error) {
	ctx = ensureContext(ctx)

	name := safestring.Name(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("El nombre del módulo es requerido")
	}
	shortName := safestring.Label(input.ShortName)
	if shortName == "" {
		shortName = name
	}

	module := &models.Module{
		Name:              name,
		ShortName:         shortName,
		Icon:              input.Icon,
		Route:             input.Route,
		ShownInNavigation: input.ShownInNavigation,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameAvailable(tx, &models.Module{}, name, ""); err != nil {
			return err
		}
		return tx.Create(module).Error
	})
	if err != nil {
		return nil, serviceError("module service", "create module", err)
	}
	return module, nil
}

// Deactivate moves the module to the deleted state and, in the same
// transaction, every active permission referencing it. Those permissions are
// flagged so Reactivate restores exactly this set.
func (s *ModuleService) Deactivate(ctx context.Context, moduleID string) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var module models.Module
	var touched int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &module, moduleID, ErrModuleNotFound); err != nil {
			return err
		}
		if !module.IsActive() {
			return nil
		}

		if err := setStatus(tx, &models.Module{}, module.ID, models.StatusDeleted); err != nil {
			return err
		}

		result := tx.Model(&models.Permission{}).
			Where("module_id = ? AND status = ?", module.ID, models.StatusActive).
			Updates(map[string]any{
				"status":                models.StatusDeleted,
				"deactivated_by_module": true,
			})
		if result.Error != nil {
			return result.Error
		}
		touched = result.RowsAffected

		return tx.First(&module, "id = ?", module.ID).Error
	})
	if err != nil {
		return nil, serviceError("module service", "deactivate module", err)
	}

	metrics.CascadeRows.WithLabelValues("deactivate").Add(float64(touched))
	return &module, nil
}

// Reactivate restores the module and only the permissions its own
// deactivation switched off. Fails with ErrDuplicateName when another active
// module took the name in the meantime.
func (s *ModuleService) Reactivate(ctx context.Context, moduleID string) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var module models.Module
	var touched int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &module, moduleID, ErrModuleNotFound); err != nil {
			return err
		}
		if module.IsActive() {
			return nil
		}
		if err := ensureNameAvailable(tx, &models.Module{}, module.Name, module.ID); err != nil {
			return err
		}

		if err := setStatus(tx, &models.Module{}, module.ID, models.StatusActive); err != nil {
			return err
		}

		result := tx.Model(&models.Permission{}).
			Where("module_id = ? AND deactivated_by_module = ?", module.ID, true).
			Updates(map[string]any{
				"status":                models.StatusActive,
				"deactivated_by_module": false,
			})
		if result.Error != nil {
			return result.Error
		}
		touched = result.RowsAffected

		return tx.First(&module, "id = ?", module.ID).Error
	})
	if err != nil {
		return nil, serviceError("module service", "reactivate module", err)
	}

	metrics.CascadeRows.WithLabelValues("reactivate").Add(float64(touched))
	return &module, nil
}

// Rename changes the module name, relabelling its permissions.
func (s *ModuleService) Rename(ctx context.Context, moduleID, newName string) (*models.Module, error) {
	return s.Update(ctx, moduleID, UpdateModuleInput{Name: &newName})
}

// Update applies the non-nil fields of input.
func (s *ModuleService) Update(ctx context.Context, moduleID string, input UpdateModuleInput) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var module models.Module
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &module, moduleID, ErrModuleNotFound); err != nil {
			return err
		}

		updates := map[string]any{}
		renamed := false
		if input.Name != nil {
			name := safestring.Name(*input.Name)
			if name == "" {
				return apperrors.NewBadRequest("El nombre del módulo es requerido")
			}
			if name != module.Name {
				if module.IsActive() {
					if err := ensureNameAvailable(tx, &models.Module{}, name, module.ID); err != nil {
						return err
					}
				}
				updates["name"] = name
				renamed = true
			}
		}
		if input.ShortName != nil {
			if shortName := safestring.Label(*input.ShortName); shortName != "" {
				updates["short_name"] = shortName
			}
		}
		if input.Icon != nil {
			updates["icon"] = *input.Icon
		}
		if input.Route != nil {
			updates["route"] = *input.Route
		}
		if input.ShownInNavigation != nil {
			updates["shown_in_navigation"] = *input.ShownInNavigation
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&models.Module{}).Where("id = ?", module.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&module, "id = ?", module.ID).Error; err != nil {
			return err
		}
		if renamed {
			return relabelPermissions(tx, "module_id = ?", module.ID)
		}
		return nil
	})
	if err != nil {
		return nil, serviceError("module service", "update module", err)
	}
	return &module, nil
}

// Get returns a module in any status.
func (s *ModuleService) Get(ctx context.Context, moduleID string) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var module models.Module
	if err := loadByID(s.db.WithContext(ctx), &module, moduleID, ErrModuleNotFound); err != nil {
		return nil, serviceError("module service", "load module", err)
	}
	return &module, nil
}

// GetByName returns the active module with the canonical form of name.
func (s *ModuleService) GetByName(ctx context.Context, name string) (*models.Module, error) {
	ctx = ensureContext(ctx)

	var module models.Module
	err := s.db.WithContext(ctx).
		Where("name = ? AND status = ?", safestring.Name(name), models.StatusActive).
		First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("module service: load module by name: %w", err)
	}
	return &module, nil
}

// List returns modules in the given status ordered by name. An empty status lists active modules.
func (s *ModuleService) List(ctx context.Context, status string) ([]models.Module, error) {
	ctx = ensureContext(ctx)

	status, err := normaliseStatus(status)
	if err != nil {
		return nil, err
	}

	var modules []models.Module
	if err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("name").
		Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("module service: list modules: %w", err)
	}
	return modules, nil
}

// SelectOptions lists active modules for dropdowns.
func (s *ModuleService) SelectOptions(ctx context.Context) ([]SelectOption, error) {
	modules, err := s.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	options := make([]SelectOption, len(modules))
	for i, m := range modules {
		options[i] = SelectOption{ID: m.ID, Name: m.Name}
	}
	return options, nil
}

// relabelPermissions recomputes the display label of the permissions matching where.
func relabelPermissions(tx *gorm.DB, where string, args ...any) error {
	var perms []models.Permission
	if err := tx.Preload("Role").Preload("Module").Where(where, args...).Find(&perms).Error; err != nil {
		return err
	}
	for _, perm := range perms {
		if perm.Role == nil || perm.Module == nil {
			continue
		}
		label := permissions.Label(perm.Role.Name, perm.Module.Name, permissions.Clamp(perm.Level))
		if label == perm.Name {
			continue
		}
		if err := tx.Model(&models.Permission{}).Where("id = ?", perm.ID).Update("name", label).Error; err != nil {
			return err
		}
	}
	return nil
}
