package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TechXTT/mdsl/pkg/config"
	"github.com/TechXTT/mdsl/pkg/generator"
)

func generate(a *app, cfg *config.Config) (int, error) {
	list, err := parseSchema(cfg.SchemaPath)
	if err != nil {
		return 0, err
	}
	opts := []generator.Option{generator.WithLogger(a.log)}
	if cfg.Package != "" {
		opts = append(opts, generator.WithPackage(cfg.Package))
	}
	gen, err := generator.NewGenerator(opts...)
	if err != nil {
		return 0, err
	}
	if err := gen.Generate(list, cfg.ModelOutDir); err != nil {
		return 0, fmt.Errorf("generate: %w", err)
	}
	return list.Len(), nil
}

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate Go types from a model file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.SchemaPath = args[0]
			}
			n, err := generate(a, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d files in %s\n", n, cfg.ModelOutDir)
			return nil
		},
	}
	cmd.Flags().String("out", "models", "Output directory for generated code")
	cmd.Flags().String("package", "", "Package name (default: output directory name)")
	_ = a.v.BindPFlag("out", cmd.Flags().Lookup("out"))
	_ = a.v.BindPFlag("package", cmd.Flags().Lookup("package"))
	return cmd
}
