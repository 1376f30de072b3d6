package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pjecz/casiopea/internal/app"
	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/seed"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "casiopea"},
		},
	}
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(zap.NewNop()) })

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var modules int64
	require.NoError(t, stack.DB.Model(&models.Module{}).Count(&modules).Error)
	require.NotZero(t, modules)
}

func TestBootstrapRuntimeRequiresSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWT.Secret = "  "

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestBootstrapRuntimeSeedsOnStartup(t *testing.T) {
	dir := t.TempDir()
	csv := "rol_nombre,estatus\nConsultor,A\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, seed.RolesPermissionFile), []byte(csv), 0o600))

	cfg := testConfig(t)
	cfg.Seed = app.SeedConfig{Dir: dir, SeedOnStartup: true}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(zap.NewNop()) })

	var role models.Role
	require.NoError(t, stack.DB.Where("name = ?", "CONSULTOR").First(&role).Error)
}

func TestBootstrapRuntimeSchedulesAuditRetention(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit = app.AuditConfig{RetentionDays: 30, CleanupSchedule: "@every 24h"}

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(zap.NewNop()) })
	require.True(t, stack.Cleaner.Enabled())
}

func TestBootstrapRuntimeRejectsBadCleanupSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit = app.AuditConfig{RetentionDays: 30, CleanupSchedule: "nunca"}

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestShutdownIsIdempotent(t *testing.T) {
	var nilStack *runtimeStack
	nilStack.Shutdown(zap.NewNop())

	stack, err := bootstrapRuntime(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	stack.Shutdown(zap.NewNop())
	stack.Shutdown(zap.NewNop())
}

func TestShutdownReturnsWithRetentionDisabled(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.False(t, stack.Cleaner.Enabled())

	done := make(chan struct{})
	go func() {
		stack.Shutdown(zap.NewNop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not return")
	}
}
