package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/pkg/crypto"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
)

func TestUserCreateCanonicalisesFields(t *testing.T) {
	set := newServiceSet(t)

	user, err := set.users.Create(context.Background(), CreateUserInput{
		Email:         " Ana.Lopez@PJECZ.gob.mx ",
		GivenNames:    "ana maría",
		FirstSurname:  "lópez",
		SecondSurname: "peña",
		JobTitle:      "auxiliar",
		Password:      "Secreto123",
	})
	require.NoError(t, err)
	require.Equal(t, "ana.lopez@pjecz.gob.mx", user.Email)
	require.Equal(t, "ANA MARIA", user.GivenNames)
	require.Equal(t, "LOPEZ", user.FirstSurname)
	require.Equal(t, "PEÑA", user.SecondSurname)
	require.True(t, crypto.VerifyPassword(user.Password, "Secreto123"))
	require.True(t, user.IsActive())
}

func TestUserCreateValidation(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	_, err := set.users.Create(ctx, CreateUserInput{Email: "no-es-correo", GivenNames: "A", FirstSurname: "B"})
	require.Error(t, err)

	_, err = set.users.Create(ctx, CreateUserInput{Email: "a@pjecz.gob.mx", FirstSurname: "B"})
	require.Error(t, err)

	_, err = set.users.Create(ctx, CreateUserInput{Email: "a@pjecz.gob.mx", GivenNames: "A", FirstSurname: "B", Password: "debil"})
	require.Error(t, err)

	set.mustUser(t, "dup@pjecz.gob.mx")
	_, err = set.users.Create(ctx, CreateUserInput{Email: "DUP@pjecz.gob.mx", GivenNames: "A", FirstSurname: "B"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserCreateWithoutPasswordCannotLogIn(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	user, err := set.users.Create(ctx, CreateUserInput{Email: "sin@pjecz.gob.mx", GivenNames: "A", FirstSurname: "B"})
	require.NoError(t, err)
	require.NotEmpty(t, user.Password)

	_, err = set.users.Authenticate(ctx, "sin@pjecz.gob.mx", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserAuthenticate(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	set.users.now = func() time.Time { return fixed }

	u := set.mustUser(t, "login@pjecz.gob.mx")

	authed, err := set.users.Authenticate(ctx, "LOGIN@pjecz.gob.mx", "Secreto123")
	require.NoError(t, err)
	require.Equal(t, u.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)
	require.True(t, fixed.Equal(*authed.LastLoginAt))

	_, err = set.users.Authenticate(ctx, "login@pjecz.gob.mx", "Incorrecta1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = set.users.Authenticate(ctx, "nadie@pjecz.gob.mx", "Secreto123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = set.users.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	_, err = set.users.Authenticate(ctx, "login@pjecz.gob.mx", "Secreto123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserAuthenticateVerifiedEmail(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()
	u := set.mustUser(t, "externo@pjecz.gob.mx")

	authed, err := set.users.AuthenticateVerifiedEmail(ctx, "Externo@PJECZ.gob.mx")
	require.NoError(t, err)
	require.Equal(t, u.ID, authed.ID)
	require.NotNil(t, authed.LastLoginAt)

	_, err = set.users.AuthenticateVerifiedEmail(ctx, "nadie@pjecz.gob.mx")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = set.users.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	_, err = set.users.AuthenticateVerifiedEmail(ctx, u.Email)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserSetPassword(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()
	u := set.mustUser(t, "clave@pjecz.gob.mx")

	require.Error(t, set.users.SetPassword(ctx, u.ID, "corta"))
	require.ErrorIs(t, set.users.SetPassword(ctx, "missing", "NuevaClave9"), ErrUserNotFound)

	require.NoError(t, set.users.SetPassword(ctx, u.ID, "NuevaClave9"))
	_, err := set.users.Authenticate(ctx, u.Email, "NuevaClave9")
	require.NoError(t, err)
}

func TestUserListPaginatesAndFilters(t *testing.T) {
	set := newServiceSet(t)
	ctx := context.Background()

	set.mustUser(t, "c@pjecz.gob.mx")
	set.mustUser(t, "a@pjecz.gob.mx")
	b := set.mustUser(t, "b@pjecz.gob.mx")
	_, err := set.users.Deactivate(ctx, b.ID)
	require.NoError(t, err)

	users, total, err := set.users.List(ctx, ListUsersOptions{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	require.Equal(t, "a@pjecz.gob.mx", users[0].Email)

	deleted, total, err := set.users.List(ctx, ListUsersOptions{Filters: UserFilters{Status: models.StatusDeleted}})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, b.ID, deleted[0].ID)

	matched, _, err := set.users.List(ctx, ListUsersOptions{Filters: UserFilters{Query: "C@PJECZ"}})
	require.NoError(t, err)
	require.Len(t, matched, 1)
}

func TestUserGetByEmail(t *testing.T) {
	set := newServiceSet(t)
	u := set.mustUser(t, "buscar@pjecz.gob.mx")

	found, err := set.users.GetByEmail(context.Background(), "Buscar@pjecz.gob.mx")
	require.NoError(t, err)
	require.Equal(t, u.ID, found.ID)

	_, err = set.users.GetByEmail(context.Background(), "otro@pjecz.gob.mx")
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = set.users.GetByEmail(context.Background(), "")
	require.ErrorIs(t, err, ErrUserNotFound)
}
