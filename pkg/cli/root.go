package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TechXTT/mdsl/internal/logger"
	"github.com/TechXTT/mdsl/pkg/config"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "v0.1.0-dev"

// app carries state shared by the subcommands of one root command.
type app struct {
	v   *viper.Viper
	log *slog.Logger
}

// config loads the config file and applies flags given on the command line.
func (a *app) config() (*config.Config, error) {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	for key, dst := range map[string]*string{
		"schema":  &cfg.SchemaPath,
		"out":     &cfg.ModelOutDir,
		"dir":     &cfg.MigrationsDir,
		"dsn":     &cfg.DSN,
		"package": &cfg.Package,
	} {
		if a.v.IsSet(key) {
			*dst = a.v.GetString(key)
		}
	}
	return cfg, nil
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

// NewRootCmd builds the top-level `mdsl` command.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "mdsl",
		Short: "mdsl: domain model parsing, code generation and migrations",
		Long: `mdsl reads model files made of entity and enum blocks, prints the parsed
model, generates Go types from it and keeps PostgreSQL migrations in step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = logger.Setup(logger.Config{
				Debug:  a.v.GetBool("debug"),
				Format: a.v.GetString("log_format"),
				Writer: cmd.ErrOrStderr(),
			})
		},
	}

	root.PersistentFlags().String("config", "", "Config file (default mdsl.yaml when present)")
	root.PersistentFlags().Bool("debug", false, "Debug output")
	root.PersistentFlags().String("log-format", "text", "Log format: text or json")
	_ = a.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = a.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = a.v.BindPFlag("log_format", root.PersistentFlags().Lookup("log-format"))
	a.v.SetEnvPrefix("MDSL")
	a.v.AutomaticEnv()

	root.AddCommand(newParseCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(NewVersionCmd())
	return root
}
