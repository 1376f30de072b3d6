package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/pkg/safestring"
)

// Checker computes effective levels straight from the store. It keeps no
// state of its own; every call is one read query.
type Checker struct {
	db *gorm.DB
}

// NavigationEntry is a module the user may reach from the menu.
type NavigationEntry struct {
	Name      string `json:"nombre"`
	ShortName string `json:"nombre_corto"`
	Icon      string `json:"icono"`
	Route     string `json:"ruta"`
	Level     Level  `json:"nivel"`
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// grants joins permission rows to the user's active memberships, keeping only
// rows whose permission, role, module and user are all active.
func (c *Checker) grants(ctx context.Context, userID string) *gorm.DB {
	return c.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN roles ON roles.id = permissions.role_id AND roles.status = ?", models.StatusActive).
		Joins("JOIN modules ON modules.id = permissions.module_id AND modules.status = ?", models.StatusActive).
		Joins("JOIN user_roles ON user_roles.role_id = permissions.role_id AND user_roles.status = ?", models.StatusActive).
		Joins("JOIN users ON users.id = user_roles.user_id AND users.status = ?", models.StatusActive).
		Where("permissions.status = ? AND user_roles.user_id = ?", models.StatusActive, userID)
}

// EffectiveLevel returns the maximum level any of the user's active roles
// holds on the module, or LevelNone.
func (c *Checker) EffectiveLevel(ctx context.Context, userID, moduleName string) (Level, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return LevelNone, errors.New("permission checker: user id is required")
	}
	moduleName = safestring.Name(moduleName)
	if moduleName == "" {
		return LevelNone, errors.New("permission checker: module name is required")
	}

	var level int
	if err := c.grants(ctx, userID).
		Where("modules.name = ?", moduleName).
		Select("COALESCE(MAX(permissions.level), 0)").
		Scan(&level).Error; err != nil {
		return LevelNone, fmt.Errorf("permission checker: effective level: %w", err)
	}
	return Clamp(level), nil
}

// EffectiveLevels returns every module on which the user holds at least VIEW.
func (c *Checker) EffectiveLevels(ctx context.Context, userID string) (map[string]Level, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var rows []struct {
		Name  string
		Level int
	}
	if err := c.grants(ctx, userID).
		Select("modules.name AS name, MAX(permissions.level) AS level").
		Group("modules.name").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("permission checker: effective levels: %w", err)
	}

	levels := make(map[string]Level, len(rows))
	for _, row := range rows {
		if level := Clamp(row.Level); level > LevelNone {
			levels[row.Name] = level
		}
	}
	return levels, nil
}

// NavigationModules lists the navigable modules the user can at least view, by name.
func (c *Checker) NavigationModules(ctx context.Context, userID string) ([]NavigationEntry, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var rows []struct {
		Name      string
		ShortName string
		Icon      string
		Route     string
		Level     int
	}
	if err := c.grants(ctx, userID).
		Where("modules.shown_in_navigation = ?", true).
		Select("modules.name AS name, modules.short_name AS short_name, modules.icon AS icon, modules.route AS route, MAX(permissions.level) AS level").
		Group("modules.name, modules.short_name, modules.icon, modules.route").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("permission checker: navigation: %w", err)
	}

	entries := make([]NavigationEntry, 0, len(rows))
	for _, row := range rows {
		level := Clamp(row.Level)
		if level < LevelView {
			continue
		}
		entries = append(entries, NavigationEntry{
			Name:      row.Name,
			ShortName: row.ShortName,
			Icon:      row.Icon,
			Route:     row.Route,
			Level:     level,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Require is the authorization gate. A nil identity is denied without
// touching the store. Store failures return DecisionUnchecked with the error.
func (c *Checker) Require(ctx context.Context, identity *Identity, moduleName string, min Level) (Decision, error) {
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return DecisionDenied, nil
	}

	level, err := c.EffectiveLevel(ctx, identity.UserID, moduleName)
	if err != nil {
		return DecisionUnchecked, err
	}
	if level.Satisfies(min) {
		return DecisionAuthorized, nil
	}
	return DecisionDenied, nil
}

// Allowed collapses Require into a boolean; errors count as denied.
func (c *Checker) Allowed(ctx context.Context, identity *Identity, moduleName string, min Level) bool {
	decision, err := c.Require(ctx, identity, moduleName, min)
	return err == nil && decision == DecisionAuthorized
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
