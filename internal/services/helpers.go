package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
)

// SelectOption is an id/name pair for form dropdowns.
type SelectOption struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// normaliseStatus maps an empty filter to the active listing.
func normaliseStatus(status string) (string, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return models.StatusActive, nil
	}
	if !models.ValidStatus(status) {
		return "", apperrors.NewBadRequest(fmt.Sprintf("Estatus inválido: %s", status))
	}
	return status, nil
}

// ensureNameAvailable fails with ErrDuplicateName when another active row of
// the model's table uses name.
func ensureNameAvailable(tx *gorm.DB, model interface{}, name, excludeID string) error {
	query := tx.Model(model).Where("name = ? AND status = ?", name, models.StatusActive)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check name %q: %w", name, err)
	}
	if count > 0 {
		return ErrDuplicateName.WithMessage(fmt.Sprintf("El nombre %s ya está en uso", name))
	}
	return nil
}

// loadByID loads any-status row by id, translating a miss into notFound.
func loadByID(tx *gorm.DB, dest interface{}, id string, notFound *apperrors.AppError) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return notFound
	}
	if err := tx.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound
		}
		return err
	}
	return nil
}

func setStatus(tx *gorm.DB, model interface{}, id, status string) error {
	return tx.Model(model).Where("id = ?", id).Update("status", status).Error
}

// serviceError passes AppErrors through untouched and wraps store errors.
func serviceError(service, op string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fmt.Errorf("%s: %s: %w", service, op, err)
}
