package main

import (
	"github.com/spf13/cobra"

	"oficina/internal/console"
	"oficina/internal/packager"
)

func newPackageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "package",
		Short: "Build the standalone launcher executable with the configured bundler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := packager.Run(cmd.Context(), packager.Options{
				Command: cfg.Packager.Command,
				Entry:   cfg.Packager.Entry,
				Name:    cfg.Packager.Name,
				Icon:    cfg.Packager.Icon,
				Dir:     cfg.Project.Dir,
				Stdout:  cmd.OutOrStdout(),
				Stderr:  cmd.ErrOrStderr(),
				Logger:  ctx.commandLogger(cfg),
			})
			if err != nil {
				return err
			}
			console.New(cmd.OutOrStdout(), cfg.UI.Language).PackageCreated(result.Executable, result.OutputDir)
			return nil
		},
	}
}
