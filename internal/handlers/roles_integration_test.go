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

func TestRoleRoutes(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.TokenFor(env.CreateAdministrator("admin@pjecz.gob.mx"))

	w := env.Request(http.MethodPost, "/api/roles", map[string]any{"nombre": "secretaría"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var role models.Role
	testutil.DecodeInto(t, testutil.DecodeResponse(t, w).Data, &role)
	require.Equal(t, "SECRETARIA", role.Name)

	w = env.Request(http.MethodPost, "/api/roles", map[string]any{"nombre": "SECRETARIA"}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.Request(http.MethodPost, "/api/roles", map[string]any{"nombre": "   "}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	user := env.CreateUser("marta@pjecz.gob.mx")
	module, err := env.Modules.GetByName(t.Context(), permissions.ModuleRoles)
	require.NoError(t, err)
	_, err = env.Perms.Grant(t.Context(), services.GrantInput{RoleID: role.ID, ModuleID: module.ID, Level: 1})
	require.NoError(t, err)
	_, err = env.Roles.Assign(t.Context(), user.ID, role.ID)
	require.NoError(t, err)
	userToken := env.TokenFor(user)

	w = env.Request(http.MethodGet, "/api/roles", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.Request(http.MethodPatch, "/api/roles/"+role.ID, map[string]any{"nombre": "secretario"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	memberships, err := env.Roles.ListMemberships(t.Context(), services.MembershipFilter{RoleID: role.ID})
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	require.Equal(t, "marta@pjecz.gob.mx en SECRETARIO", memberships[0].Description)

	// Deleting the role cuts access without touching its permissions.
	w = env.Request(http.MethodDelete, "/api/roles/"+role.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.Request(http.MethodGet, "/api/roles", nil, userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.Request(http.MethodPost, "/api/roles/"+role.ID+"/recuperar", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.Request(http.MethodGet, "/api/roles", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
}
