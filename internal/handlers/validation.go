package handlers

import (
	stdErrors "errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/response"
	appValidator "github.com/pjecz/casiopea/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("Carga JSON inválida"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	var ve appValidator.ValidationErrors
	if err == nil || !stdErrors.As(err, &ve) || len(ve) == 0 {
		return "Solicitud inválida"
	}
	return ve.Error()
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
