package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Soft-delete status values. Rows are never removed; they move between A and B.
const (
	StatusActive  = "A"
	StatusDeleted = "B"
)

// BaseModel provides shared fields for all persistent models.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"creado"`
	UpdatedAt time.Time `json:"modificado"`
	Status    string    `gorm:"size:1;not null;default:A;index" json:"estatus"`
}

// BeforeCreate ensures UUID identifiers and the active status are set.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	return nil
}

// IsActive reports whether the row is in normal operation.
func (m BaseModel) IsActive() bool {
	return m.Status == StatusActive
}

// ValidStatus reports whether s is one of the soft-delete states.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusDeleted
}
