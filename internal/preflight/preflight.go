package preflight

import (
	"context"

	"oficina/internal/config"
	"oficina/internal/connectivity"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the checks that apply to the configured server mode.
// A nil prober skips the connectivity check.
func RunAll(ctx context.Context, cfg *config.Config, prober connectivity.Prober) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckInstanceLock(cfg.LockPath()))

	switch cfg.Server.Mode {
	case config.ModeDev:
		results = append(results, CheckRuntime(ctx, cfg))
		results = append(results, CheckTools(cfg)...)
		results = append(results, CheckMarker(cfg))
	case config.ModeStatic:
		results = append(results, CheckBuildOutput(cfg))
		results = append(results, CheckPort(cfg.Server.Host, cfg.Server.Port))
	}

	if cfg.Status.Enabled && cfg.Status.Listen != "" && cfg.Server.Mode == config.ModeDev {
		results = append(results, CheckListenAddress("Status endpoint", cfg.Status.Listen))
	}

	if prober != nil {
		results = append(results, CheckConnectivity(ctx, prober, cfg.Connectivity.Target))
	}

	results = append(results, CheckBundler(cfg))
	return results
}

// Failed returns the non-optional results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
