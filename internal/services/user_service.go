package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/pkg/crypto"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/metrics"
	"github.com/pjecz/casiopea/pkg/safestring"
)

// CreateUserInput describes the fields accepted when creating a user. An
// empty Password stores a random one the user cannot know.
type CreateUserInput struct {
	Email         string
	GivenNames    string
	FirstSurname  string
	SecondSurname string
	JobTitle      string
	Password      string
}

// UserFilters captures listing filters.
type UserFilters struct {
	Status string
	Query  string
}

// ListUsersOptions controls pagination for user listing.
type ListUsersOptions struct {
	Page     int
	PageSize int
	Filters  UserFilters
}

// UserService manages operator accounts and password login.
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, now: time.Now}, nil
}

// Create provisions a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email, err := safestring.Email(input.Email)
	if err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("El correo electrónico es requerido")
	}
	givenNames := safestring.Name(input.GivenNames)
	firstSurname := safestring.Name(input.FirstSurname)
	if givenNames == "" || firstSurname == "" {
		return nil, apperrors.NewBadRequest("Nombres y apellido paterno son requeridos")
	}

	password := input.Password
	if password == "" {
		if password, err = crypto.GenerateToken(24); err != nil {
			return nil, fmt.Errorf("user service: generate password: %w", err)
		}
	} else if err := crypto.CheckPasswordStrength(password); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Email:         email,
		GivenNames:    givenNames,
		FirstSurname:  firstSurname,
		SecondSurname: safestring.Name(input.SecondSurname),
		JobTitle:      safestring.Name(input.JobTitle),
		Password:      hashed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, serviceError("user service", "create user", err)
	}
	return user, nil
}

// Get returns a user in any status.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := loadByID(s.db.WithContext(ctx), &user, userID, ErrUserNotFound); err != nil {
		return nil, serviceError("user service", "load user", err)
	}
	return &user, nil
}

// GetByEmail returns a user in any status by canonical e-mail.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email, err := safestring.Email(email)
	if err != nil || email == "" {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user by email: %w", err)
	}
	return &user, nil
}

// List returns a page of users ordered by e-mail.
func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	status, err := normaliseStatus(opts.Filters.Status)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", status)
	if q := strings.TrimSpace(opts.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(given_names) LIKE ? OR LOWER(first_surname) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: count users: %w", err)
	}

	var users []models.User
	if err := query.
		Order("email").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("user service: list users: %w", err)
	}

	return users, total, nil
}

// SetPassword replaces the password after checking its strength.
func (s *UserService) SetPassword(ctx context.Context, userID, password string) error {
	ctx = ensureContext(ctx)

	if err := crypto.CheckPasswordStrength(password); err != nil {
		return apperrors.NewBadRequest(err.Error())
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("user service: hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("user service: set password: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the user; the gate ignores inactive users.
func (s *UserService) Deactivate(ctx context.Context, userID string) (*models.User, error) {
	return s.toggle(ctx, userID, models.StatusDeleted)
}

// Reactivate restores a user.
func (s *UserService) Reactivate(ctx context.Context, userID string) (*models.User, error) {
	return s.toggle(ctx, userID, models.StatusActive)
}

func (s *UserService) toggle(ctx context.Context, userID, status string) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	if err := setStatus(s.db.WithContext(ensureContext(ctx)), &models.User{}, user.ID, status); err != nil {
		return nil, fmt.Errorf("user service: update status: %w", err)
	}
	user.Status = status
	return user, nil
}

// Authenticate checks e-mail and password for an active user and stamps the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.completeLogin(ctx, user)
}

// AuthenticateVerifiedEmail signs in the active user owning an e-mail an
// external identity provider has already verified.
func (s *UserService) AuthenticateVerifiedEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.completeLogin(ctx, user)
}

func (s *UserService) completeLogin(ctx context.Context, user *models.User) (*models.User, error) {
	now := s.now()
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}
