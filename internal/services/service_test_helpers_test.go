package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
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
		&models.AuditLog{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

type serviceSet struct {
	db          *gorm.DB
	modules     *ModuleService
	roles       *RoleService
	permissions *PermissionService
	users       *UserService
	audit       *AuditService
	checker     *permissions.Checker
}

func newServiceSet(t *testing.T) *serviceSet {
	t.Helper()

	db := openServiceTestDB(t)
	set := &serviceSet{db: db}

	var err error
	set.modules, err = NewModuleService(db)
	require.NoError(t, err)
	set.roles, err = NewRoleService(db)
	require.NoError(t, err)
	set.permissions, err = NewPermissionService(db)
	require.NoError(t, err)
	set.users, err = NewUserService(db)
	require.NoError(t, err)
	set.audit, err = NewAuditService(db)
	require.NoError(t, err)
	set.checker, err = permissions.NewChecker(db)
	require.NoError(t, err)
	return set
}

func (s *serviceSet) mustModule(t *testing.T, name string) *models.Module {
	t.Helper()
	m, err := s.modules.Register(context.Background(), RegisterModuleInput{Name: name, ShortName: name, Route: "/r", ShownInNavigation: true})
	require.NoError(t, err)
	return m
}

func (s *serviceSet) mustRole(t *testing.T, name string) *models.Role {
	t.Helper()
	r, err := s.roles.Register(context.Background(), name)
	require.NoError(t, err)
	return r
}

func (s *serviceSet) mustUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := s.users.Create(context.Background(), CreateUserInput{
		Email:        email,
		GivenNames:   "Usuario",
		FirstSurname: "Prueba",
		Password:     "Secreto123",
	})
	require.NoError(t, err)
	return u
}

func (s *serviceSet) mustGrant(t *testing.T, role *models.Role, module *models.Module, level int) *models.Permission {
	t.Helper()
	p, err := s.permissions.Grant(context.Background(), GrantInput{RoleID: role.ID, ModuleID: module.ID, Level: level})
	require.NoError(t, err)
	return p
}

func (s *serviceSet) mustAssign(t *testing.T, user *models.User, role *models.Role) *models.UserRole {
	t.Helper()
	m, err := s.roles.Assign(context.Background(), user.ID, role.ID)
	require.NoError(t, err)
	return m
}

func (s *serviceSet) level(t *testing.T, user *models.User, module string) permissions.Level {
	t.Helper()
	level, err := s.checker.EffectiveLevel(context.Background(), user.ID, module)
	require.NoError(t, err)
	return level
}

func (s *serviceSet) permissionStatus(t *testing.T, id string) models.Permission {
	t.Helper()
	var p models.Permission
	require.NoError(t, s.db.First(&p, "id = ?", id).Error)
	return p
}
