package models

// UserRole is the membership of a user in a role. Duplicates are tolerated.
type UserRole struct {
	BaseModel

	UserID      string `gorm:"type:uuid;not null;index" json:"usuario_id"`
	User        *User  `gorm:"foreignKey:UserID" json:"usuario,omitempty"`
	RoleID      string `gorm:"type:uuid;not null;index" json:"rol_id"`
	Role        *Role  `gorm:"foreignKey:RoleID" json:"rol,omitempty"`
	Description string `gorm:"size:256;not null" json:"descripcion"`
}
