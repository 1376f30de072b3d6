package cli

import (
	"context"
	"errors"
	"flag"

	"github.com/pjecz/casiopea/internal/database"
	"github.com/pjecz/casiopea/internal/seed"
)

var errResetNotConfirmed = errors.New("db reset borra todos los datos; repita con -force")

func newDBCommand() *Command {
	cmd := &Command{Name: "db", Description: "Base de datos: init, seed, reset"}

	cmd.add(&Command{
		Name:        "init",
		Description: "Crear tablas, módulos base y rol administrador",
		Run:         runDBInit,
	})
	cmd.add(&Command{
		Name:        "seed",
		Description: "Cargar todos los archivos CSV del directorio de semillas",
		Run:         runDBSeed,
	})
	cmd.add(newDBResetCommand())

	return cmd
}

func newDBResetCommand() *Command {
	flags := flag.NewFlagSet("reset", flag.ContinueOnError)
	force := flags.Bool("force", false, "Confirmar el borrado de todos los datos")
	withSeed := flags.Bool("seed", false, "Cargar los archivos CSV después de recrear")

	return &Command{
		Name:        "reset",
		Description: "Eliminar y recrear todas las tablas",
		Flags:       flags,
		Run: func(ctx context.Context, env *Env, _ []string) error {
			if !*force {
				return errResetNotConfirmed
			}
			db, err := env.DB(ctx)
			if err != nil {
				return err
			}
			if err := database.Reset(db); err != nil {
				return err
			}
			env.logger().Warn("database reset")
			if err := runDBInit(ctx, env, nil); err != nil {
				return err
			}
			if *withSeed {
				return seedAll(ctx, env)
			}
			return nil
		},
	}
}

func runDBInit(ctx context.Context, env *Env, _ []string) error {
	db, err := env.DB(ctx)
	if err != nil {
		return err
	}
	if err := database.SeedData(ctx, db); err != nil {
		return err
	}
	env.printf("Base de datos inicializada\n")
	return nil
}

func runDBSeed(ctx context.Context, env *Env, _ []string) error {
	if err := runDBInit(ctx, env, nil); err != nil {
		return err
	}
	return seedAll(ctx, env)
}

func seedAll(ctx context.Context, env *Env) error {
	seeder, err := env.Seeder(ctx)
	if err != nil {
		return err
	}
	results, err := seeder.All(ctx)
	for _, step := range []string{"modulos", "roles", "permisos", "usuarios", "usuarios_roles"} {
		if res, ok := results[step]; ok {
			printResult(env, step, res)
		}
	}
	return err
}

// seedCommand wraps a single seeder step as a "seed" subcommand.
func seedCommand(description string, step func(*seed.Seeder) func(context.Context) (seed.Result, error), name string) *Command {
	return &Command{
		Name:        "seed",
		Description: description,
		Run: func(ctx context.Context, env *Env, _ []string) error {
			seeder, err := env.Seeder(ctx)
			if err != nil {
				return err
			}
			res, err := step(seeder)(ctx)
			if err != nil {
				return err
			}
			printResult(env, name, res)
			return nil
		},
	}
}

func printResult(env *Env, step string, res seed.Result) {
	env.printf("%-15s %d agregados, %d omitidos\n", step, res.Inserted, res.Skipped)
}
