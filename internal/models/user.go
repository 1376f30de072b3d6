package models

import (
	"strings"
	"time"
)

// User is an operator account that gains access through role memberships.
type User struct {
	BaseModel

	Email         string `gorm:"size:256;uniqueIndex;not null" json:"email"`
	GivenNames    string `gorm:"size:256;not null" json:"nombres"`
	FirstSurname  string `gorm:"size:256;not null" json:"apellido_paterno"`
	SecondSurname string `gorm:"size:256" json:"apellido_materno"`
	JobTitle      string `gorm:"size:256" json:"puesto"`
	Password      string `gorm:"size:256" json:"-"`

	LastLoginAt *time.Time `json:"ultimo_acceso,omitempty"`

	Memberships []UserRole `gorm:"foreignKey:UserID" json:"-"`
}

// FullName joins given names and surnames.
func (u User) FullName() string {
	return strings.Join(strings.Fields(u.GivenNames+" "+u.FirstSurname+" "+u.SecondSurname), " ")
}
