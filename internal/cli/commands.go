package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/pjecz/casiopea/internal/permissions"
	"github.com/pjecz/casiopea/internal/seed"
	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/safestring"
)

func newModulesCommand() *Command {
	cmd := &Command{Name: "modules", Description: "Módulos"}
	cmd.add(seedCommand("Cargar modulos.csv", func(s *seed.Seeder) func(context.Context) (seed.Result, error) {
		return s.Modules
	}, "modulos"))
	return cmd
}

func newRolesCommand() *Command {
	cmd := &Command{Name: "roles", Description: "Roles"}
	cmd.add(seedCommand("Cargar los roles de roles_permisos.csv", func(s *seed.Seeder) func(context.Context) (seed.Result, error) {
		return s.Roles
	}, "roles"))
	return cmd
}

func newPermissionsCommand() *Command {
	cmd := &Command{Name: "permissions", Description: "Permisos"}
	cmd.add(seedCommand("Cargar los permisos de roles_permisos.csv", func(s *seed.Seeder) func(context.Context) (seed.Result, error) {
		return s.Permissions
	}, "permisos"))
	cmd.add(&Command{
		Name:        "effective",
		Description: "Mostrar el nivel efectivo: effective EMAIL MODULO",
		Run:         runEffectiveLevel,
	})
	return cmd
}

func newUsersCommand() *Command {
	cmd := &Command{Name: "users", Description: "Usuarios"}
	cmd.add(seedCommand("Cargar usuarios_roles.csv", func(s *seed.Seeder) func(context.Context) (seed.Result, error) {
		return s.Users
	}, "usuarios"))
	cmd.add(newSetPasswordCommand())
	return cmd
}

func newUserRolesCommand() *Command {
	cmd := &Command{Name: "user-roles", Description: "Usuarios-Roles"}
	cmd.add(seedCommand("Cargar las membresías de usuarios_roles.csv", func(s *seed.Seeder) func(context.Context) (seed.Result, error) {
		return s.UserRoles
	}, "usuarios_roles"))
	return cmd
}

func runEffectiveLevel(ctx context.Context, env *Env, args []string) error {
	if len(args) != 2 {
		return errors.New("uso: permissions effective EMAIL MODULO")
	}

	db, err := env.DB(ctx)
	if err != nil {
		return err
	}
	users, err := services.NewUserService(db)
	if err != nil {
		return err
	}
	user, err := users.GetByEmail(ctx, args[0])
	if err != nil {
		return err
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return err
	}
	level, err := checker.EffectiveLevel(ctx, user.ID, args[1])
	if err != nil {
		return err
	}
	if !user.IsActive() {
		level = permissions.LevelNone
	}

	env.printf("%s en %s: %d %s\n", user.Email, safestring.Name(args[1]), int(level), level)
	return nil
}

func newSetPasswordCommand() *Command {
	flags := flag.NewFlagSet("set-password", flag.ContinueOnError)
	password := flags.String("password", "", "Nueva contraseña; si se omite se lee una línea de la entrada estándar")

	return &Command{
		Name:        "set-password",
		Description: "Cambiar la contraseña: set-password EMAIL",
		Flags:       flags,
		Run: func(ctx context.Context, env *Env, args []string) error {
			if len(args) != 1 {
				return errors.New("uso: users set-password [-password X] EMAIL")
			}

			secret := *password
			if secret == "" {
				line, err := readLine(env)
				if err != nil {
					return err
				}
				secret = line
			}

			db, err := env.DB(ctx)
			if err != nil {
				return err
			}
			users, err := services.NewUserService(db)
			if err != nil {
				return err
			}
			user, err := users.GetByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			if err := users.SetPassword(ctx, user.ID, secret); err != nil {
				return err
			}
			env.printf("Contraseña actualizada para %s\n", user.Email)
			return nil
		},
	}
}

func readLine(env *Env) (string, error) {
	if env.In == nil {
		return "", errors.New("no hay entrada estándar para leer la contraseña")
	}
	scanner := bufio.NewScanner(env.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("leer contraseña: %w", err)
		}
		return "", errors.New("contraseña vacía")
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return "", errors.New("contraseña vacía")
	}
	return line, nil
}
