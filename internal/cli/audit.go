package cli

import (
	"context"
	"errors"
	"flag"

	"github.com/pjecz/casiopea/internal/app/maintenance"
	"github.com/pjecz/casiopea/internal/services"
)

func newAuditCommand() *Command {
	cmd := &Command{Name: "audit", Description: "Bitácoras"}

	flags := flag.NewFlagSet("prune", flag.ContinueOnError)
	days := flags.Int("days", 0, "Días a conservar; por defecto audit.retention_days")

	cmd.add(&Command{
		Name:        "prune",
		Description: "Eliminar bitácoras más antiguas que la retención",
		Flags:       flags,
		Run: func(ctx context.Context, env *Env, _ []string) error {
			cfg, err := env.Config()
			if err != nil {
				return err
			}
			retention := *days
			if retention <= 0 {
				retention = cfg.Audit.RetentionDays
			}
			if retention <= 0 {
				return errors.New("sin retención configurada; use -days N")
			}

			db, err := env.DB(ctx)
			if err != nil {
				return err
			}
			audit, err := services.NewAuditService(db)
			if err != nil {
				return err
			}
			removed, err := maintenance.NewCleaner(audit, retention).RunOnce(ctx)
			if err != nil {
				return err
			}
			env.printf("%d bitácoras eliminadas (retención %d días)\n", removed, retention)
			return nil
		},
	})
	return cmd
}
