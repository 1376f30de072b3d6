package safestring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	require.Equal(t, "CIT CLIENTES", Name("  cit   clientes "))
	require.Equal(t, "ATENCION AL PUBLICO", Name("Atención al público"))
	require.Equal(t, "PEÑA", Name("peña"))
	require.Equal(t, "USUARIOS ROLES", Name("usuarios_roles"))
	require.Equal(t, "", Name("   "))
}

func TestLabelKeepsCaseAndAccents(t *testing.T) {
	require.Equal(t, "Módulos", Label(" Módulos "))
	require.Equal(t, "Citas (web)", Label("Citas (web)!"))
}

func TestStringTruncates(t *testing.T) {
	out := String(strings.Repeat("a", 300), Options{MaxLen: 10})
	require.Equal(t, "AAAAAAAAAA", out)
}

func TestEmail(t *testing.T) {
	email, err := Email(" Admin@PJECZ.gob.mx ")
	require.NoError(t, err)
	require.Equal(t, "admin@pjecz.gob.mx", email)

	email, err = Email("")
	require.NoError(t, err)
	require.Empty(t, email)

	_, err = Email("no es correo")
	require.Error(t, err)
}

func TestMessage(t *testing.T) {
	require.Equal(t, "Nuevo Modulo MODULOS", Message("Nuevo   Modulo MODULOS"))
	require.Equal(t, "Sin descripción", Message("  "))
	require.Len(t, []rune(Message(strings.Repeat("x", 400))), MessageMaxLen)
}
