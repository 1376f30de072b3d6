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

func servicesMembershipFilter(userID string) services.MembershipFilter {
	return services.MembershipFilter{UserID: userID}
}

func TestUserRoutes(t *testing.T) {
	env := testutil.NewEnv(t)
	creator := env.CreateUserWithLevels("crea@pjecz.gob.mx", map[string]permissions.Level{
		permissions.ModuleUsers: permissions.LevelCreate,
	})
	token := env.TokenFor(creator)

	w := env.Request(http.MethodPost, "/api/usuarios", map[string]any{
		"email":            "Nuevo@PJECZ.gob.mx",
		"nombres":          "José",
		"apellido_paterno": "Núñez",
		"puesto":           "actuario",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user models.User
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &user)
	require.Equal(t, "nuevo@pjecz.gob.mx", user.Email)
	require.Equal(t, "JOSE", user.GivenNames)
	require.NotContains(t, w.Body.String(), "password")

	w = env.Request(http.MethodPost, "/api/usuarios", map[string]any{
		"email":            "nuevo@pjecz.gob.mx",
		"nombres":          "Otro",
		"apellido_paterno": "Usuario",
	}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.Request(http.MethodPost, "/api/usuarios", map[string]any{"email": "no-es-correo"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.Request(http.MethodGet, "/api/usuarios?q=nuevo", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeResponse(t, w)
	require.Equal(t, 1, resp.Meta.Total)

	// CREATE is not enough to delete.
	w = env.Request(http.MethodDelete, "/api/usuarios/"+user.ID, nil, token)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodPut, "/api/usuarios/"+user.ID+"/contrasena", map[string]any{"contrasena": "OtraClave9"}, token)
	require.Equal(t, http.StatusForbidden, w.Code)

	admin := env.TokenFor(env.CreateAdministrator("admin@pjecz.gob.mx"))
	w = env.Request(http.MethodPut, "/api/usuarios/"+user.ID+"/contrasena", map[string]any{"contrasena": "OtraClave9"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env.Login("nuevo@pjecz.gob.mx", "OtraClave9")

	w = env.Request(http.MethodDelete, "/api/usuarios/"+user.ID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodGet, "/api/usuarios/inactivos", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, testutil.DecodeResponse(t, w).Meta.Total)
}
