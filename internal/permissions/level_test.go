package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerb(t *testing.T) {
	require.Equal(t, "", Verb(LevelNone))
	require.Equal(t, "ver", Verb(LevelView))
	require.Equal(t, "crear", Verb(LevelCreate))
	require.Equal(t, "modificar", Verb(LevelModify))
	require.Equal(t, "administrar", Verb(LevelAdminister))
}

func TestClamp(t *testing.T) {
	require.Equal(t, LevelNone, Clamp(-1))
	require.Equal(t, LevelAdminister, Clamp(9))
	require.Equal(t, LevelCreate, Clamp(2))
}

func TestLevelOrdering(t *testing.T) {
	require.True(t, LevelAdminister.Satisfies(LevelModify))
	require.True(t, LevelView.Satisfies(LevelView))
	require.False(t, LevelCreate.Satisfies(LevelModify))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"3":           LevelModify,
		" 7 ":         LevelAdminister,
		"-2":          LevelNone,
		"ver":         LevelView,
		"ADMINISTRAR": LevelAdminister,
		"Crear":       LevelCreate,
		"ninguno":     LevelNone,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := ParseLevel("")
	require.ErrorIs(t, err, ErrInvalidLevel)
	_, err = ParseLevel("todo")
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestLabel(t *testing.T) {
	require.Equal(t, "ATENCION puede crear en CIT CLIENTES", Label("ATENCION", "CIT CLIENTES", LevelCreate))
	require.Equal(t, "ATENCION sin acceso a CIT CLIENTES", Label("ATENCION", "CIT CLIENTES", LevelNone))
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "MODIFICAR", LevelModify.String())
	require.Equal(t, "Level(7)", Level(7).String())
}

func TestDecisionString(t *testing.T) {
	require.Equal(t, "authorized", DecisionAuthorized.String())
	require.Equal(t, "denied", DecisionDenied.String())
	require.Equal(t, "unchecked", DecisionUnchecked.String())
}
