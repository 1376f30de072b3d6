package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/safestring"
)

// MembershipFilter narrows ListMemberships.
type MembershipFilter struct {
	UserID string
	RoleID string
	Status string
}

// RoleService maintains roles and user memberships. Role lifecycle never
// cascades; inactive roles are simply ignored by the gate.
type RoleService struct {
	db *gorm.DB
}

// NewRoleService constructs a RoleService using the provided database handle.
func NewRoleService(db *gorm.DB) (*RoleService, error) {
	if db == nil {
		return nil, errors.New("role service: db is required")
	}
	return &RoleService{db: db}, nil
}

// Register creates an active role.
func (s *RoleService) Register(ctx context.Context, name string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name = safestring.Name(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("El nombre del rol es requerido")
	}

	role := &models.Role{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameAvailable(tx, &models.Role{}, name, ""); err != nil {
			return err
		}
		return tx.Create(role).Error
	})
	if err != nil {
		return nil, serviceError("role service", "create role", err)
	}
	return role, nil
}

// Rename changes the role name and relabels its permissions and memberships.
func (s *RoleService) Rename(ctx context.Context, roleID, newName string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	name := safestring.Name(newName)
	if name == "" {
		return nil, apperrors.NewBadRequest("El nombre del rol es requerido")
	}

	var role models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &role, roleID, ErrRoleNotFound); err != nil {
			return err
		}
		if name == role.Name {
			return nil
		}
		if role.IsActive() {
			if err := ensureNameAvailable(tx, &models.Role{}, name, role.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Role{}).Where("id = ?", role.ID).Update("name", name).Error; err != nil {
			return err
		}
		role.Name = name

		if err := relabelPermissions(tx, "role_id = ?", role.ID); err != nil {
			return err
		}
		return relabelMemberships(tx, "role_id = ?", role.ID)
	})
	if err != nil {
		return nil, serviceError("role service", "rename role", err)
	}
	return s.Get(ctx, role.ID)
}

// Deactivate soft-deletes the role. Memberships and permissions are untouched.
func (s *RoleService) Deactivate(ctx context.Context, roleID string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &role, roleID, ErrRoleNotFound); err != nil {
			return err
		}
		if !role.IsActive() {
			return nil
		}
		if err := setStatus(tx, &models.Role{}, role.ID, models.StatusDeleted); err != nil {
			return err
		}
		role.Status = models.StatusDeleted
		return nil
	})
	if err != nil {
		return nil, serviceError("role service", "deactivate role", err)
	}
	return &role, nil
}

// Reactivate restores the role unless another active role took its name.
func (s *RoleService) Reactivate(ctx context.Context, roleID string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &role, roleID, ErrRoleNotFound); err != nil {
			return err
		}
		if role.IsActive() {
			return nil
		}
		if err := ensureNameAvailable(tx, &models.Role{}, role.Name, role.ID); err != nil {
			return err
		}
		if err := setStatus(tx, &models.Role{}, role.ID, models.StatusActive); err != nil {
			return err
		}
		role.Status = models.StatusActive
		return nil
	})
	if err != nil {
		return nil, serviceError("role service", "reactivate role", err)
	}
	return &role, nil
}

// Assign adds the user to the role. Both must be active. Duplicate
// memberships are not prevented.
func (s *RoleService) Assign(ctx context.Context, userID, roleID string) (*models.UserRole, error) {
	ctx = ensureContext(ctx)

	var membership *models.UserRole
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := loadByID(tx, &role, roleID, ErrRoleNotFound); err != nil {
			return err
		}
		if !role.IsActive() {
			return ErrRoleNotFound
		}

		var user models.User
		if err := loadByID(tx, &user, userID, ErrUserNotFound); err != nil {
			return err
		}
		if !user.IsActive() {
			return ErrUserNotFound
		}

		membership = &models.UserRole{
			UserID:      user.ID,
			RoleID:      role.ID,
			Description: membershipLabel(user.Email, role.Name),
		}
		if err := tx.Create(membership).Error; err != nil {
			return err
		}
		membership.User = &user
		membership.Role = &role
		return nil
	})
	if err != nil {
		return nil, serviceError("role service", "assign role", err)
	}
	return membership, nil
}

// RevokeMembership soft-deletes a membership.
func (s *RoleService) RevokeMembership(ctx context.Context, membershipID string) (*models.UserRole, error) {
	return s.toggleMembership(ctx, membershipID, models.StatusDeleted)
}

// RestoreMembership reactivates a membership.
func (s *RoleService) RestoreMembership(ctx context.Context, membershipID string) (*models.UserRole, error) {
	return s.toggleMembership(ctx, membershipID, models.StatusActive)
}

func (s *RoleService) toggleMembership(ctx context.Context, membershipID, status string) (*models.UserRole, error) {
	ctx = ensureContext(ctx)

	var membership models.UserRole
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &membership, membershipID, ErrMembershipNotFound); err != nil {
			return err
		}
		if membership.Status == status {
			return nil
		}
		if err := setStatus(tx, &models.UserRole{}, membership.ID, status); err != nil {
			return err
		}
		membership.Status = status
		return nil
	})
	if err != nil {
		return nil, serviceError("role service", "update membership", err)
	}
	return &membership, nil
}

// ListMemberships returns memberships ordered by description.
func (s *RoleService) ListMemberships(ctx context.Context, filter MembershipFilter) ([]models.UserRole, error) {
	ctx = ensureContext(ctx)

	status, err := normaliseStatus(filter.Status)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Preload("Role").
		Where("status = ?", status)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.RoleID != "" {
		query = query.Where("role_id = ?", filter.RoleID)
	}

	var memberships []models.UserRole
	if err := query.Order("description").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("role service: list memberships: %w", err)
	}
	return memberships, nil
}

// Get returns a role in any status.
func (s *RoleService) Get(ctx context.Context, roleID string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := loadByID(s.db.WithContext(ctx), &role, roleID, ErrRoleNotFound); err != nil {
		return nil, serviceError("role service", "load role", err)
	}
	return &role, nil
}

// GetByName returns the active role with the canonical form of name.
func (s *RoleService) GetByName(ctx context.Context, name string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).
		Where("name = ? AND status = ?", safestring.Name(name), models.StatusActive).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("role service: load role by name: %w", err)
	}
	return &role, nil
}

// List returns roles in the given status ordered by name.
func (s *RoleService) List(ctx context.Context, status string) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	status, err := normaliseStatus(status)
	if err != nil {
		return nil, err
	}

	var roles []models.Role
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("role service: list roles: %w", err)
	}
	return roles, nil
}

// SelectOptions lists active roles for dropdowns.
func (s *RoleService) SelectOptions(ctx context.Context) ([]SelectOption, error) {
	roles, err := s.List(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	options := make([]SelectOption, len(roles))
	for i, r := range roles {
		options[i] = SelectOption{ID: r.ID, Name: r.Name}
	}
	return options, nil
}

func membershipLabel(email, roleName string) string {
	return fmt.Sprintf("%s en %s", email, roleName)
}

func relabelMemberships(tx *gorm.DB, where string, args ...any) error {
	var memberships []models.UserRole
	if err := tx.Preload("User").Preload("Role").Where(where, args...).Find(&memberships).Error; err != nil {
		return err
	}
	for _, m := range memberships {
		if m.User == nil || m.Role == nil {
			continue
		}
		label := membershipLabel(m.User.Email, m.Role.Name)
		if label == m.Description {
			continue
		}
		if err := tx.Model(&models.UserRole{}).Where("id = ?", m.ID).Update("description", label).Error; err != nil {
			return err
		}
	}
	return nil
}
