package permissions

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pjecz/casiopea/internal/models"
)

func setupPermissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Module{},
		&models.Permission{},
		&models.UserRole{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, db: setupPermissionTestDB(t)}
}

func (f *fixture) user(email string) *models.User {
	f.t.Helper()
	u := &models.User{Email: email, GivenNames: "Prueba", FirstSurname: "Usuario"}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

func (f *fixture) role(name string) *models.Role {
	f.t.Helper()
	r := &models.Role{Name: name}
	require.NoError(f.t, f.db.Create(r).Error)
	return r
}

func (f *fixture) module(name string, nav bool) *models.Module {
	f.t.Helper()
	m := &models.Module{Name: name, ShortName: name, Route: "/x", ShownInNavigation: nav}
	require.NoError(f.t, f.db.Create(m).Error)
	return m
}

func (f *fixture) grant(role *models.Role, module *models.Module, level int) *models.Permission {
	f.t.Helper()
	p := &models.Permission{
		RoleID:   role.ID,
		ModuleID: module.ID,
		Level:    level,
		Name:     Label(role.Name, module.Name, Clamp(level)),
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

func (f *fixture) assign(user *models.User, role *models.Role) *models.UserRole {
	f.t.Helper()
	m := &models.UserRole{UserID: user.ID, RoleID: role.ID, Description: user.Email + " en " + role.Name}
	require.NoError(f.t, f.db.Create(m).Error)
	return m
}

func (f *fixture) setStatus(model interface{}, id, status string) {
	f.t.Helper()
	require.NoError(f.t, f.db.Model(model).Where("id = ?", id).Update("status", status).Error)
}

func (f *fixture) checker() *Checker {
	f.t.Helper()
	c, err := NewChecker(f.db)
	require.NoError(f.t, err)
	return c
}
