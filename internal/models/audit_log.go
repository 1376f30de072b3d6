package models

import "gorm.io/datatypes"

// AuditLog is one bitácora line appended after a state-changing operation.
type AuditLog struct {
	BaseModel

	UserID      *string        `gorm:"type:uuid;index" json:"usuario_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"usuario,omitempty"`
	ModuleName  string         `gorm:"size:256;index" json:"modulo"`
	Description string         `gorm:"size:256;not null" json:"descripcion"`
	URL         string         `gorm:"size:512" json:"url"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}
