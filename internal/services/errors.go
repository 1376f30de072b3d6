package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/pjecz/casiopea/pkg/errors"
)

var (
	// ErrDuplicateName is returned when an active module or role already holds the name.
	ErrDuplicateName = apperrors.New("DUPLICATE_NAME", "El nombre ya está en uso", http.StatusConflict)
	// ErrDuplicateEmail is returned when a user with the e-mail exists in any status.
	ErrDuplicateEmail = apperrors.New("DUPLICATE_EMAIL", "El correo electrónico ya está registrado", http.StatusConflict)

	ErrModuleNotFound     = apperrors.New("MODULE_NOT_FOUND", "Módulo no encontrado", http.StatusNotFound)
	ErrRoleNotFound       = apperrors.New("ROLE_NOT_FOUND", "Rol no encontrado", http.StatusNotFound)
	ErrUserNotFound       = apperrors.New("USER_NOT_FOUND", "Usuario no encontrado", http.StatusNotFound)
	ErrPermissionNotFound = apperrors.New("PERMISSION_NOT_FOUND", "Permiso no encontrado", http.StatusNotFound)
	ErrMembershipNotFound = apperrors.New("MEMBERSHIP_NOT_FOUND", "Usuario-rol no encontrado", http.StatusNotFound)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate")
}
