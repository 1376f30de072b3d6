package models

type Role struct {
	BaseModel

	Name string `gorm:"size:256;not null;index" json:"nombre"`

	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permisos,omitempty"`
	Memberships []UserRole   `gorm:"foreignKey:RoleID" json:"-"`
}
