package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secreto123")
	require.NoError(t, err)

	require.True(t, VerifyPassword(hash, "Secreto123"))
	require.False(t, VerifyPassword(hash, "incorrecto"))
	require.False(t, VerifyPassword("", "Secreto123"))
}

func TestCheckPasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Secreto123":      true,
		"secreto123":      false,
		"SECRETO123":      false,
		"SecretoSinNum":   false,
		"Ab1":             false,
		"Secreto 123":     false,
		"ÑandúVeloz2024":  true,
	}
	for password, ok := range cases {
		err := CheckPasswordStrength(password)
		if ok {
			require.NoError(t, err, password)
		} else {
			require.ErrorIs(t, err, ErrWeakPassword, password)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
