package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechXTT/mdsl/pkg/internal/migrate"
	pkgmigrate "github.com/TechXTT/mdsl/pkg/migrate"
	"github.com/TechXTT/mdsl/pkg/runtime"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [dev|deploy|reset|status|down]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dev", "deploy", "reset", "status", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.config()
			if err != nil {
				return err
			}
			db, err := runtime.Connect(ctx, cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if args[0] == "dev" {
				list, err := parseSchema(cfg.SchemaPath)
				if err != nil {
					return err
				}
				files, err := migrate.EnsureStubs(ctx, db, list, cfg.MigrationsDir, a.log)
				if err != nil {
					return fmt.Errorf("ensure stubs: %w", err)
				}
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", f)
				}
			}

			mgr, err := pkgmigrate.NewManager(db, cfg.MigrationsDir, pkgmigrate.WithLogger(a.log))
			if err != nil {
				return err
			}
			switch args[0] {
			case "dev":
				if err := mgr.Up(ctx); err != nil {
					return err
				}
				_, err := generate(a, cfg)
				return err
			case "deploy":
				return mgr.Up(ctx)
			case "reset":
				return mgr.Reset(ctx)
			case "down":
				return mgr.Down(ctx)
			case "status":
				status, err := mgr.Status(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), status)
			}
			return nil
		},
	}
	cmd.Flags().String("schema", "model.mdsl", "Model file path")
	cmd.Flags().String("dir", "migrations", "Migrations directory")
	cmd.Flags().String("dsn", "", "Database URL (default from config or DATABASE_URL)")
	_ = a.v.BindPFlag("schema", cmd.Flags().Lookup("schema"))
	_ = a.v.BindPFlag("dir", cmd.Flags().Lookup("dir"))
	_ = a.v.BindPFlag("dsn", cmd.Flags().Lookup("dsn"))
	return cmd
}
