package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina/internal/connectivity"
	"oficina/internal/console"
	"oficina/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report launcher environment readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			printer := console.New(cmd.OutOrStdout(), cfg.UI.Language)
			printer.StatusSection()
			printer.Status("Config", console.StatusInfo, ctx.configDescription())
			printer.Status("Project", console.StatusInfo, cfg.Project.Dir)
			printer.Status("Mode", console.StatusInfo, cfg.Server.Mode)

			prober := connectivity.NewTCPProber(cfg.Connectivity.Target, cfg.ProbeTimeout())
			results := preflight.RunAll(cmd.Context(), cfg, prober)
			for _, result := range results {
				printer.Status(result.Name, statusKindFor(result), result.Detail)
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d readiness check(s) failed", len(failed))
			}
			return nil
		},
	}
}

func statusKindFor(result preflight.Result) console.StatusKind {
	switch {
	case result.Passed:
		return console.StatusOK
	case result.Optional:
		return console.StatusWarn
	default:
		return console.StatusError
	}
}
