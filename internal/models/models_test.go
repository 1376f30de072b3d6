package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesIDAndStatus(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)
	require.Equal(t, StatusActive, base.Status)
	require.True(t, base.IsActive())
}

func TestBaseModelBeforeCreateKeepsExplicitStatus(t *testing.T) {
	base := BaseModel{ID: "fixed", Status: StatusDeleted}
	require.NoError(t, base.BeforeCreate(nil))
	require.Equal(t, "fixed", base.ID)
	require.Equal(t, StatusDeleted, base.Status)
	require.False(t, base.IsActive())
}

func TestEmbeddedModelsUseBaseBeforeCreate(t *testing.T) {
	cases := []struct {
		name  string
		model func() *BaseModel
	}{
		{"module", func() *BaseModel { m := &Module{}; return &m.BaseModel }},
		{"role", func() *BaseModel { r := &Role{}; return &r.BaseModel }},
		{"permission", func() *BaseModel { p := &Permission{}; return &p.BaseModel }},
		{"user", func() *BaseModel { u := &User{}; return &u.BaseModel }},
		{"user_role", func() *BaseModel { m := &UserRole{}; return &m.BaseModel }},
		{"audit_log", func() *BaseModel { a := &AuditLog{}; return &a.BaseModel }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.model()
			require.NoError(t, model.BeforeCreate(nil))
			require.NotEmpty(t, model.ID)
		})
	}
}

func TestPermissionBeforeSaveClampsLevel(t *testing.T) {
	for input, want := range map[int]int{-1: 0, 0: 0, 2: 2, 4: 4, 9: 4} {
		p := &Permission{Level: input}
		require.NoError(t, p.BeforeSave(nil))
		require.Equal(t, want, p.Level, "input %d", input)
	}
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusActive))
	require.True(t, ValidStatus(StatusDeleted))
	require.False(t, ValidStatus("X"))
}

func TestUserFullName(t *testing.T) {
	u := User{GivenNames: "Ana María", FirstSurname: "López", SecondSurname: ""}
	require.Equal(t, "Ana María López", u.FullName())
}
