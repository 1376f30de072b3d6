package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type modulePayload struct {
	Nombre      string `json:"nombre" validate:"notblank,max=256"`
	NombreCorto string `json:"nombre_corto" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := modulePayload{Nombre: "MODULOS", NombreCorto: "Módulos", Email: "soporte@pjecz.gob.mx"}
	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructFailures(t *testing.T) {
	err := ValidateStruct(modulePayload{Nombre: "   ", Email: "invalido"})
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 3)

	fields := map[string]string{}
	for _, v := range vErrs {
		fields[v.Field] = v.Tag
	}
	require.Equal(t, "notblank", fields["nombre"])
	require.Equal(t, "required", fields["nombre_corto"])
	require.Equal(t, "email", fields["email"])
	require.Contains(t, err.Error(), "nombre es requerido")
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("mayusculas", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value != "" && value == toUpperASCII(value)
	})
	require.NoError(t, err)

	type custom struct {
		Value string `validate:"mayusculas"`
	}

	require.NoError(t, ValidateStruct(custom{Value: "ROLES"}))
	require.Error(t, ValidateStruct(custom{Value: "roles"}))
}

func toUpperASCII(s string) string {
	out := []byte(s)
	for i, b := range out {
		if b >= 'a' && b <= 'z' {
			out[i] = b - 32
		}
	}
	return string(out)
}
