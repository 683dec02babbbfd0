package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oficina/internal/config"
	"oficina/internal/launchrun"
)

type runFlags struct {
	noBrowser bool
	mode      string
	port      int
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().BoolVar(&flags.noBrowser, "no-browser", false, "Do not open the browser")
	cmd.Flags().StringVar(&flags.mode, "mode", "", fmt.Sprintf("Server mode override (%s or %s)", config.ModeDev, config.ModeStatic))
	cmd.Flags().IntVar(&flags.port, "port", 0, "Static server port override")
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the frontend server and open the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLauncher(cmd, ctx, flags)
		},
	}
	addRunFlags(cmd, &flags)
	return cmd
}

func runLauncher(cmd *cobra.Command, ctx *commandContext, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if mode := strings.TrimSpace(flags.mode); mode != "" {
		cfg.Server.Mode = strings.ToLower(mode)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flags.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return launchrun.Run(cmd.Context(), cfg, launchrun.Options{
		Verbose:   ctx.verbose(),
		NoBrowser: flags.noBrowser,
		Stdout:    cmd.OutOrStdout(),
	})
}
