package models

import "gorm.io/gorm"

// Bounds of the permission level scale.
const (
	MinLevel = 0
	MaxLevel = 4
)

// Permission grants a role a level on a module.
type Permission struct {
	BaseModel

	RoleID   string  `gorm:"type:uuid;not null;index" json:"rol_id"`
	Role     *Role   `gorm:"foreignKey:RoleID" json:"rol,omitempty"`
	ModuleID string  `gorm:"type:uuid;not null;index" json:"modulo_id"`
	Module   *Module `gorm:"foreignKey:ModuleID" json:"modulo,omitempty"`

	Level int    `gorm:"not null" json:"nivel"`
	Name  string `gorm:"size:256;not null" json:"nombre"`

	// DeactivatedByModule marks rows switched off by a module cascade so the
	// reverse cascade restores only those.
	DeactivatedByModule bool `gorm:"not null" json:"desactivado_por_modulo"`
}

// BeforeSave keeps Level inside the scale regardless of the write path.
func (p *Permission) BeforeSave(tx *gorm.DB) error {
	p.Level = ClampLevel(p.Level)
	return nil
}

// ClampLevel forces a level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
