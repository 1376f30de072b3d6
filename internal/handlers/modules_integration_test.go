package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pjecz/casiopea/internal/handlers/testutil"
	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/services"
)

func TestModuleRoutesFollowLevels(t *testing.T) {
	env := testutil.NewEnv(t)
	viewer := env.CreateUserWithLevels("ver@pjecz.gob.mx", map[string]permissions.Level{
		permissions.ModuleModules: permissions.LevelView,
	})
	token := env.TokenFor(viewer)

	w := env.Request(http.MethodGet, "/api/modulos", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.Request(http.MethodPost, "/api/modulos", map[string]any{"nombre": "edictos", "nombre_corto": "Edictos"}, token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodGet, "/api/modulos/inactivos", nil, token)
	require.Equal(t, http.StatusForbidden, w.Code)

	// No grant at all on ROLES.
	w = env.Request(http.MethodGet, "/api/roles", nil, token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestModuleLifecycleThroughAPI(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.CreateAdministrator("admin@pjecz.gob.mx")
	token := env.TokenFor(admin)

	w := env.Request(http.MethodPost, "/api/modulos", map[string]any{
		"nombre":        "edictos",
		"nombre_corto":  "Edictos",
		"icono":         "edictos.png",
		"ruta":          "/edictos",
		"en_navegacion": true,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var module models.Module
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &module)
	require.Equal(t, "EDICTOS", module.Name)

	w = env.Request(http.MethodPost, "/api/modulos", map[string]any{"nombre": "Edictos", "nombre_corto": "Otro"}, token)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "DUPLICATE_NAME", testutil.DecodeResponse(t, w).Error.Code)

	role, err := env.Roles.Register(t.Context(), "capturista")
	require.NoError(t, err)
	perm, err := env.Perms.Grant(t.Context(), services.GrantInput{RoleID: role.ID, ModuleID: module.ID, Level: 2})
	require.NoError(t, err)

	w = env.Request(http.MethodDelete, "/api/modulos/"+module.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reloaded, err := env.Perms.Get(t.Context(), perm.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDeleted, reloaded.Status)
	require.True(t, reloaded.DeactivatedByModule)

	w = env.Request(http.MethodGet, "/api/modulos/inactivos", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var inactive []models.Module
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &inactive)
	require.Len(t, inactive, 1)

	w = env.Request(http.MethodPost, "/api/modulos/"+module.ID+"/recuperar", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reloaded, err = env.Perms.Get(t.Context(), perm.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, reloaded.Status)
	require.False(t, reloaded.DeactivatedByModule)

	w = env.Request(http.MethodPatch, "/api/modulos/"+module.ID, map[string]any{"nombre": "edictos judiciales"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reloaded, err = env.Perms.Get(t.Context(), perm.ID)
	require.NoError(t, err)
	require.Equal(t, "CAPTURISTA puede crear en EDICTOS JUDICIALES", reloaded.Name)

	var descriptions []string
	require.NoError(t, env.DB.Model(&models.AuditLog{}).Where("module_name = ?", permissions.ModuleModules).Pluck("description", &descriptions).Error)
	require.ElementsMatch(t, []string{
		"Nuevo Modulo EDICTOS",
		"Eliminado Modulo EDICTOS",
		"Recuperado Modulo EDICTOS",
		"Editado Modulo EDICTOS JUDICIALES",
	}, descriptions)
}

func TestModuleNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.TokenFor(env.CreateAdministrator("admin@pjecz.gob.mx"))

	w := env.Request(http.MethodGet, "/api/modulos/no-existe", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.Request(http.MethodGet, "/api/no-existe", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}
