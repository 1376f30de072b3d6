package models

// Module is a functional area of the system subject to access control.
// Name is unique among active modules; deleted modules may share it.
type Module struct {
	BaseModel

	Name              string `gorm:"size:256;not null;index" json:"nombre"`
	ShortName         string `gorm:"size:64;not null" json:"nombre_corto"`
	Icon              string `gorm:"size:48" json:"icono"`
	Route             string `gorm:"size:64" json:"ruta"`
	ShownInNavigation bool   `gorm:"not null" json:"en_navegacion"`

	Permissions []Permission `gorm:"foreignKey:ModuleID" json:"-"`
}
