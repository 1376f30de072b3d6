package seed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/services"
	apperrors "github.com/pjecz/casiopea/pkg/errors"
	"github.com/pjecz/casiopea/pkg/logger"
	"github.com/pjecz/casiopea/pkg/safestring"
)

// Result counts what one seeder did.
type Result struct {
	Inserted int
	Skipped  int
}

// Seeder loads the CSV seed files through the services, so names are
// canonicalised, levels clamped and labels built the same way as the API.
type Seeder struct {
	dir             string
	defaultPassword string

	modules *services.ModuleService
	roles   *services.RoleService
	perms   *services.PermissionService
	users   *services.UserService
	log     *zap.Logger
}

// Option customises a Seeder.
type Option func(*Seeder)

// WithDefaultPassword sets the password given to seeded users. Without it
// every user receives a random password.
func WithDefaultPassword(password string) Option {
	return func(s *Seeder) {
		s.defaultPassword = password
	}
}

// WithLogger overrides the zap logger used for warnings.
func WithLogger(log *zap.Logger) Option {
	return func(s *Seeder) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSeeder builds a seeder reading files from dir.
func NewSeeder(db *gorm.DB, dir string, opts ...Option) (*Seeder, error) {
	if db == nil {
		return nil, errors.New("seed: db is required")
	}

	s := &Seeder{dir: dir, log: logger.WithModule("seed")}
	var err error
	if s.modules, err = services.NewModuleService(db); err != nil {
		return nil, err
	}
	if s.roles, err = services.NewRoleService(db); err != nil {
		return nil, err
	}
	if s.perms, err = services.NewPermissionService(db); err != nil {
		return nil, err
	}
	if s.users, err = services.NewUserService(db); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// All runs every seeder in dependency order. Missing files are logged and
// skipped; any other failure is collected and the remaining seeders still run.
func (s *Seeder) All(ctx context.Context) (map[string]Result, error) {
	steps := []struct {
		name string
		run  func(context.Context) (Result, error)
	}{
		{"modulos", s.Modules},
		{"roles", s.Roles},
		{"permisos", s.Permissions},
		{"usuarios", s.Users},
		{"usuarios_roles", s.UserRoles},
	}

	results := make(map[string]Result, len(steps))
	var errs error
	for _, step := range steps {
		res, err := step.run(ctx)
		if errors.Is(err, ErrMissingFile) {
			s.log.Warn("seed file missing", zap.String("step", step.name), zap.Error(err))
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", step.name, err))
			continue
		}
		results[step.name] = res
		s.log.Info("seed step done",
			zap.String("step", step.name),
			zap.Int("inserted", res.Inserted),
			zap.Int("skipped", res.Skipped),
		)
	}
	return results, errs
}

// Modules reads modulos.csv: nombre,nombre_corto,icono,ruta,en_navegacion,estatus.
func (s *Seeder) Modules(ctx context.Context) (Result, error) {
	rows, err := readRows(s.dir, ModulesFile)
	if err != nil {
		return Result{}, err
	}

	known, err := knownNames(ctx, s.modules.List, func(m models.Module) string { return m.Name })
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		if name := safestring.Name(r.get("nombre")); known[name] {
			res.Skipped++
			continue
		}
		module, err := s.modules.Register(ctx, services.RegisterModuleInput{
			Name:              r.get("nombre"),
			ShortName:         r.get("nombre_corto"),
			Icon:              r.get("icono"),
			Route:             r.get("ruta"),
			ShownInNavigation: r.get("en_navegacion") == "1",
		})
		if err != nil {
			if s.skippable(err) {
				s.log.Warn("module skipped", zap.String("nombre", r.get("nombre")), zap.Error(err))
				res.Skipped++
				continue
			}
			return res, err
		}
		if isDeleted(r.get("estatus")) {
			if _, err := s.modules.Deactivate(ctx, module.ID); err != nil {
				return res, err
			}
		}
		known[module.Name] = true
		res.Inserted++
	}
	return res, nil
}

// Roles reads the rol_nombre and estatus columns of roles_permisos.csv.
func (s *Seeder) Roles(ctx context.Context) (Result, error) {
	rows, err := readRows(s.dir, RolesPermissionFile)
	if err != nil {
		return Result{}, err
	}

	known, err := knownNames(ctx, s.roles.List, func(r models.Role) string { return r.Name })
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		if name := safestring.Name(r.get("rol_nombre")); known[name] {
			res.Skipped++
			continue
		}
		role, err := s.roles.Register(ctx, r.get("rol_nombre"))
		if err != nil {
			if s.skippable(err) {
				s.log.Warn("role skipped", zap.String("rol_nombre", r.get("rol_nombre")), zap.Error(err))
				res.Skipped++
				continue
			}
			return res, err
		}
		if isDeleted(r.get("estatus")) {
			if _, err := s.roles.Deactivate(ctx, role.ID); err != nil {
				return res, err
			}
		}
		known[role.Name] = true
		res.Inserted++
	}
	return res, nil
}

// Permissions reads roles_permisos.csv, which carries one column per module
// named after the module in lower case. Blank and non-numeric cells are
// ignored; levels are clamped onto the scale. A (role, module) pair that
// already holds an active row is left alone. Cells under inactive modules
// cannot be granted and are logged as skipped.
func (s *Seeder) Permissions(ctx context.Context) (Result, error) {
	rows, err := readRows(s.dir, RolesPermissionFile)
	if err != nil {
		return Result{}, err
	}

	modules, err := s.modules.List(ctx, models.StatusActive)
	if err != nil {
		return Result{}, err
	}
	inactive, err := s.modules.List(ctx, models.StatusDeleted)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		role, err := s.roles.GetByName(ctx, r.get("rol_nombre"))
		if err != nil {
			if errors.Is(err, services.ErrRoleNotFound) {
				s.log.Warn("role not found, permissions skipped", zap.String("rol_nombre", r.get("rol_nombre")))
				res.Skipped++
				continue
			}
			return res, err
		}

		for _, module := range inactive {
			column := strings.ToLower(module.Name)
			if r.has(column) && r.get(column) != "" {
				s.log.Warn("module inactive, permission skipped",
					zap.String("rol", role.Name),
					zap.String("modulo", module.Name),
				)
				res.Skipped++
			}
		}

		for _, module := range modules {
			column := strings.ToLower(module.Name)
			if !r.has(column) || r.get(column) == "" {
				continue
			}
			level, err := strconv.Atoi(r.get(column))
			if err != nil {
				s.log.Warn("non-numeric level skipped",
					zap.String("rol", role.Name),
					zap.String("modulo", module.Name),
					zap.String("valor", r.get(column)),
				)
				res.Skipped++
				continue
			}

			existing, err := s.perms.List(ctx, services.PermissionFilter{RoleID: role.ID, ModuleID: module.ID})
			if err != nil {
				return res, err
			}
			if len(existing) > 0 {
				res.Skipped++
				continue
			}

			status := models.StatusActive
			if isDeleted(r.get("estatus")) {
				status = models.StatusDeleted
			}
			if _, err := s.perms.Grant(ctx, services.GrantInput{
				RoleID:   role.ID,
				ModuleID: module.ID,
				Level:    level,
				Status:   status,
			}); err != nil {
				return res, err
			}
			res.Inserted++
		}
	}
	return res, nil
}

// Users reads usuarios_roles.csv: email,nombres,apellido_paterno,apellido_materno,puesto,estatus.
func (s *Seeder) Users(ctx context.Context) (Result, error) {
	rows, err := readRows(s.dir, UsersRolesFile)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		user, err := s.users.Create(ctx, services.CreateUserInput{
			Email:         r.get("email"),
			GivenNames:    r.get("nombres"),
			FirstSurname:  r.get("apellido_paterno"),
			SecondSurname: r.get("apellido_materno"),
			JobTitle:      r.get("puesto"),
			Password:      s.defaultPassword,
		})
		if err != nil {
			if s.skippable(err) {
				s.log.Warn("user skipped", zap.String("email", r.get("email")), zap.Error(err))
				res.Skipped++
				continue
			}
			return res, err
		}
		if isDeleted(r.get("estatus")) {
			if _, err := s.users.Deactivate(ctx, user.ID); err != nil {
				return res, err
			}
		}
		res.Inserted++
	}
	return res, nil
}

// UserRoles reads the email and roles columns of usuarios_roles.csv. The
// roles cell holds comma-separated role names.
func (s *Seeder) UserRoles(ctx context.Context) (Result, error) {
	rows, err := readRows(s.dir, UsersRolesFile)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		email := r.get("email")
		user, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				s.log.Warn("user not found, roles skipped", zap.String("email", email))
				res.Skipped++
				continue
			}
			return res, err
		}

		for _, name := range strings.Split(r.get("roles"), ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			role, err := s.roles.GetByName(ctx, name)
			if err != nil {
				if errors.Is(err, services.ErrRoleNotFound) {
					s.log.Warn("role not found for user", zap.String("rol", name), zap.String("email", user.Email))
					res.Skipped++
					continue
				}
				return res, err
			}

			existing, err := s.roles.ListMemberships(ctx, services.MembershipFilter{UserID: user.ID, RoleID: role.ID})
			if err != nil {
				return res, err
			}
			if len(existing) > 0 {
				res.Skipped++
				continue
			}

			if _, err := s.roles.Assign(ctx, user.ID, role.ID); err != nil {
				if errors.Is(err, services.ErrUserNotFound) {
					// Inactive users keep no memberships from the seed.
					res.Skipped++
					continue
				}
				return res, err
			}
			res.Inserted++
		}
	}
	return res, nil
}

// knownNames collects the canonical names of every row in any status, so a
// rerun does not register another copy of a row seeded as deleted.
func knownNames[T any](ctx context.Context, list func(context.Context, string) ([]T, error), name func(T) string) (map[string]bool, error) {
	known := make(map[string]bool)
	for _, status := range []string{models.StatusActive, models.StatusDeleted} {
		items, err := list(ctx, status)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			known[name(item)] = true
		}
	}
	return known, nil
}

// skippable reports row-level failures that should not abort a seed run.
func (s *Seeder) skippable(err error) bool {
	return errors.Is(err, services.ErrDuplicateName) ||
		errors.Is(err, services.ErrDuplicateEmail) ||
		errors.Is(err, apperrors.ErrBadRequest)
}

func isDeleted(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), models.StatusDeleted)
}
