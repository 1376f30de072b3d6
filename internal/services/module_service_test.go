package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/permissions"
)

func TestModuleServiceRequiresDB(t *testing.T) {
	_, err := NewModuleService(nil)
	require.Error(t, err)
}

func TestModuleRegisterCanonicalisesAndRejectsDuplicates(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	module, err := set.modules.Register(ctx, RegisterModuleInput{Name: " cit  clientes", ShortName: "Clientes", Icon: "c.png", Route: "/cit_clientes"})
	require.NoError(t, err)
	require.Equal(t, "CIT CLIENTES", module.Name)
	require.Equal(t, "Clientes", module.ShortName)
	require.True(t, module.IsActive())

	_, err = set.modules.Register(ctx, RegisterModuleInput{Name: "CIT CLIENTES"})
	require.ErrorIs(t, err, ErrDuplicateName)

	_, err = set.modules.Register(ctx, RegisterModuleInput{Name: "   "})
	require.Error(t, err)
}

func TestModuleNameReusableAfterDeactivation(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	first := set.mustModule(t, "MATERIAS")
	_, err := set.modules.Deactivate(ctx, first.ID)
	require.NoError(t, err)

	second, err := set.modules.Register(ctx, RegisterModuleInput{Name: "MATERIAS"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = set.modules.Reactivate(ctx, first.ID)
	require.ErrorIs(t, err, ErrDuplicateName)

	reloaded, err := set.modules.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDeleted, reloaded.Status)
}

func TestModuleDeactivateCascadesToPermissions(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "CIT CITAS")
	other := set.mustModule(t, "OFICINAS")
	atencion := set.mustRole(t, "ATENCION")
	supervisor := set.mustRole(t, "SUPERVISOR")
	p1 := set.mustGrant(t, atencion, m, 3)
	p2 := set.mustGrant(t, supervisor, m, 4)
	p3 := set.mustGrant(t, atencion, other, 2)

	u := set.mustUser(t, "cascada@pjecz.gob.mx")
	set.mustAssign(t, u, atencion)
	set.mustAssign(t, u, supervisor)
	require.Equal(t, permissions.LevelAdminister, set.level(t, u, "CIT CITAS"))

	deactivated, err := set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDeleted, deactivated.Status)

	for _, id := range []string{p1.ID, p2.ID} {
		p := set.permissionStatus(t, id)
		require.Equal(t, models.StatusDeleted, p.Status)
		require.True(t, p.DeactivatedByModule)
	}
	untouched := set.permissionStatus(t, p3.ID)
	require.Equal(t, models.StatusActive, untouched.Status)
	require.False(t, untouched.DeactivatedByModule)

	require.Equal(t, permissions.LevelNone, set.level(t, u, "CIT CITAS"))
	require.Equal(t, permissions.LevelCreate, set.level(t, u, "OFICINAS"))

	again, err := set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDeleted, again.Status)
}

func TestModuleReactivateRestoresLevel(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "AUTORIDADES")
	atencion := set.mustRole(t, "ATENCION")
	set.mustGrant(t, atencion, m, 3)
	u := set.mustUser(t, "atencion@pjecz.gob.mx")
	set.mustAssign(t, u, atencion)

	require.Equal(t, permissions.LevelModify, set.level(t, u, "AUTORIDADES"))

	_, err := set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, permissions.LevelNone, set.level(t, u, "AUTORIDADES"))

	reactivated, err := set.modules.Reactivate(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, reactivated.IsActive())
	require.Equal(t, permissions.LevelModify, set.level(t, u, "AUTORIDADES"))
}

func TestModuleRoundTripRestoresExactlyTheCascadedRows(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "DISTRITOS")
	r1 := set.mustRole(t, "CONSULTA")
	r2 := set.mustRole(t, "CAPTURA")
	r3 := set.mustRole(t, "REVOCADO")
	p1 := set.mustGrant(t, r1, m, 1)
	p2 := set.mustGrant(t, r2, m, 2)
	revoked := set.mustGrant(t, r3, m, 4)

	_, err := set.permissions.Deactivate(ctx, revoked.ID)
	require.NoError(t, err)

	before, err := set.permissions.List(ctx, PermissionFilter{ModuleID: m.ID})
	require.NoError(t, err)

	_, err = set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	_, err = set.modules.Reactivate(ctx, m.ID)
	require.NoError(t, err)

	after, err := set.permissions.List(ctx, PermissionFilter{ModuleID: m.ID})
	require.NoError(t, err)
	require.Equal(t, idsOf(before), idsOf(after))
	require.ElementsMatch(t, []string{p1.ID, p2.ID}, idsOf(after))

	stillOff := set.permissionStatus(t, revoked.ID)
	require.Equal(t, models.StatusDeleted, stillOff.Status)
	require.False(t, stillOff.DeactivatedByModule)

	for _, id := range []string{p1.ID, p2.ID} {
		require.False(t, set.permissionStatus(t, id).DeactivatedByModule)
	}
}

func TestPermissionRevokedWhileModuleInactiveStaysOff(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "OFICINAS")
	r := set.mustRole(t, "ATENCION")
	p := set.mustGrant(t, r, m, 2)

	_, err := set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	_, err = set.permissions.Deactivate(ctx, p.ID)
	require.NoError(t, err)
	_, err = set.modules.Reactivate(ctx, m.ID)
	require.NoError(t, err)

	require.Equal(t, models.StatusDeleted, set.permissionStatus(t, p.ID).Status)
}

func TestPermissionReactivateRequiresActiveModuleAndRole(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "CIT CLIENTES")
	r := set.mustRole(t, "ATENCION")
	p := set.mustGrant(t, r, m, 2)

	_, err := set.modules.Deactivate(ctx, m.ID)
	require.NoError(t, err)
	_, err = set.permissions.Reactivate(ctx, p.ID)
	require.ErrorIs(t, err, ErrModuleNotFound)
	require.Equal(t, models.StatusDeleted, set.permissionStatus(t, p.ID).Status)

	_, err = set.modules.Reactivate(ctx, m.ID)
	require.NoError(t, err)
	_, err = set.permissions.Deactivate(ctx, p.ID)
	require.NoError(t, err)
	_, err = set.roles.Deactivate(ctx, r.ID)
	require.NoError(t, err)
	_, err = set.permissions.Reactivate(ctx, p.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)
	require.Equal(t, models.StatusDeleted, set.permissionStatus(t, p.ID).Status)
}

func TestModuleRenameRelabelsPermissions(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "CIT CLIENTES")
	set.mustModule(t, "CIT CITAS")
	r := set.mustRole(t, "ATENCION")
	p := set.mustGrant(t, r, m, 2)
	require.Equal(t, "ATENCION puede crear en CIT CLIENTES", p.Name)

	renamed, err := set.modules.Rename(ctx, m.ID, "cit personas")
	require.NoError(t, err)
	require.Equal(t, "CIT PERSONAS", renamed.Name)
	require.Equal(t, "ATENCION puede crear en CIT PERSONAS", set.permissionStatus(t, p.ID).Name)

	_, err = set.modules.Rename(ctx, m.ID, "CIT CITAS")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestModuleUpdateAppliesOnlyProvidedFields(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	m := set.mustModule(t, "MATERIAS")
	icon := "materias.png"
	hidden := false
	updated, err := set.modules.Update(ctx, m.ID, UpdateModuleInput{Icon: &icon, ShownInNavigation: &hidden})
	require.NoError(t, err)
	require.Equal(t, "MATERIAS", updated.Name)
	require.Equal(t, "materias.png", updated.Icon)
	require.Equal(t, "/r", updated.Route)
	require.False(t, updated.ShownInNavigation)

	unchanged, err := set.modules.Update(ctx, m.ID, UpdateModuleInput{})
	require.NoError(t, err)
	require.Equal(t, updated.Icon, unchanged.Icon)
}

func TestModuleLookupsAndListings(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	b := set.mustModule(t, "ROLES")
	a := set.mustModule(t, "MODULOS")
	c := set.mustModule(t, "USUARIOS")
	_, err := set.modules.Deactivate(ctx, c.ID)
	require.NoError(t, err)

	active, err := set.modules.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, a.ID, active[0].ID)
	require.Equal(t, b.ID, active[1].ID)

	inactive, err := set.modules.List(ctx, models.StatusDeleted)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	require.Equal(t, c.ID, inactive[0].ID)

	_, err = set.modules.List(ctx, "Z")
	require.Error(t, err)

	found, err := set.modules.GetByName(ctx, "modulos")
	require.NoError(t, err)
	require.Equal(t, a.ID, found.ID)

	_, err = set.modules.GetByName(ctx, "USUARIOS")
	require.ErrorIs(t, err, ErrModuleNotFound)

	_, err = set.modules.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrModuleNotFound)
	_, err = set.modules.Deactivate(ctx, "missing")
	require.ErrorIs(t, err, ErrModuleNotFound)

	options, err := set.modules.SelectOptions(ctx)
	require.NoError(t, err)
	require.Equal(t, []SelectOption{{ID: a.ID, Name: "MODULOS"}, {ID: b.ID, Name: "ROLES"}}, options)
}

func idsOf(perms []models.Permission) []string {
	ids := make([]string, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	return ids
}
