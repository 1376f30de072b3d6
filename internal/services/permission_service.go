package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
)

// GrantInput describes a (role, module, level) grant. Level is clamped onto
// the scale. An empty Status creates an active row.
type GrantInput struct {
	RoleID   string
	ModuleID string
	Level    int
	Status   string
}

// PermissionFilter narrows List.
type PermissionFilter struct {
	RoleID   string
	ModuleID string
	Status   string
}

// PermissionService writes the permission matrix.
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService constructs a PermissionService using the provided database handle.
func NewPermissionService(db *gorm.DB) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	return &PermissionService{db: db}, nil
}

// Grant stores a permission row for an active role and module. It does not
// look for an existing row for the pair; the gate takes the maximum.
func (s *PermissionService) Grant(ctx context.Context, input GrantInput) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	status := models.StatusActive
	if input.Status != "" {
		var err error
		if status, err = normaliseStatus(input.Status); err != nil {
			return nil, err
		}
	}
	level := permissions.Clamp(input.Level)

	var perm *models.Permission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := loadByID(tx, &role, input.RoleID, ErrRoleNotFound); err != nil {
			return err
		}
		if !role.IsActive() {
			return ErrRoleNotFound
		}

		var module models.Module
		if err := loadByID(tx, &module, input.ModuleID, ErrModuleNotFound); err != nil {
			return err
		}
		if !module.IsActive() {
			return ErrModuleNotFound
		}

		perm = &models.Permission{
			BaseModel: models.BaseModel{Status: status},
			RoleID:    role.ID,
			ModuleID:  module.ID,
			Level:     int(level),
			Name:      permissions.Label(role.Name, module.Name, level),
		}
		if err := tx.Create(perm).Error; err != nil {
			return err
		}
		perm.Role = &role
		perm.Module = &module
		return nil
	})
	if err != nil {
		return nil, serviceError("permission service", "grant", err)
	}
	return perm, nil
}

// SetLevel changes the level of an existing row and relabels it.
func (s *PermissionService) SetLevel(ctx context.Context, permissionID string, level int) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	clamped := permissions.Clamp(level)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm models.Permission
		if err := tx.Preload("Role").Preload("Module").First(&perm, "id = ?", permissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPermissionNotFound
			}
			return err
		}
		updates := map[string]any{"level": int(clamped)}
		if perm.Role != nil && perm.Module != nil {
			updates["name"] = permissions.Label(perm.Role.Name, perm.Module.Name, clamped)
		}
		return tx.Model(&models.Permission{}).Where("id = ?", perm.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, serviceError("permission service", "set level", err)
	}
	return s.Get(ctx, permissionID)
}

// Deactivate revokes one permission row independently of its module. The
// module provenance flag is cleared so a later module reactivation leaves
// the row off.
func (s *PermissionService) Deactivate(ctx context.Context, permissionID string) (*models.Permission, error) {
	return s.toggle(ctx, permissionID, models.StatusDeleted)
}

// Reactivate restores one permission row. Its role and module must be
// active, as for Grant.
func (s *PermissionService) Reactivate(ctx context.Context, permissionID string) (*models.Permission, error) {
	return s.toggle(ctx, permissionID, models.StatusActive)
}

func (s *PermissionService) toggle(ctx context.Context, permissionID, status string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var perm models.Permission
		if err := loadByID(tx, &perm, permissionID, ErrPermissionNotFound); err != nil {
			return err
		}
		if status == models.StatusActive {
			if err := requireActiveParents(tx, &perm); err != nil {
				return err
			}
		}
		return tx.Model(&models.Permission{}).Where("id = ?", perm.ID).Updates(map[string]any{
			"status":                status,
			"deactivated_by_module": false,
		}).Error
	})
	if err != nil {
		return nil, serviceError("permission service", "update status", err)
	}
	return s.Get(ctx, permissionID)
}

func requireActiveParents(tx *gorm.DB, perm *models.Permission) error {
	var role models.Role
	if err := loadByID(tx, &role, perm.RoleID, ErrRoleNotFound); err != nil {
		return err
	}
	if !role.IsActive() {
		return ErrRoleNotFound
	}

	var module models.Module
	if err := loadByID(tx, &module, perm.ModuleID, ErrModuleNotFound); err != nil {
		return err
	}
	if !module.IsActive() {
		return ErrModuleNotFound
	}
	return nil
}

// Get returns a permission in any status with its role and module.
func (s *PermissionService) Get(ctx context.Context, permissionID string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	var perm models.Permission
	err := loadByID(s.db.WithContext(ctx).Preload("Role").Preload("Module"), &perm, permissionID, ErrPermissionNotFound)
	if err != nil {
		return nil, serviceError("permission service", "load permission", err)
	}
	return &perm, nil
}

// List returns permissions ordered by label.
func (s *PermissionService) List(ctx context.Context, filter PermissionFilter) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	status, err := normaliseStatus(filter.Status)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Role").
		Preload("Module").
		Where("status = ?", status)
	if filter.RoleID != "" {
		query = query.Where("role_id = ?", filter.RoleID)
	}
	if filter.ModuleID != "" {
		query = query.Where("module_id = ?", filter.ModuleID)
	}

	var perms []models.Permission
	if err := query.Order("name").Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("permission service: list permissions: %w", err)
	}
	return perms, nil
}
