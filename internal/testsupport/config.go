package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"oficina/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The connectivity target points at a closed local port so nothing leaves the host,
// and the browser launch is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Project.Dir = filepath.Join(base, "project")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Host = "127.0.0.1"
	cfgVal.Server.Port = 0
	cfgVal.Connectivity.Target = "127.0.0.1:9"
	cfgVal.Connectivity.TimeoutSeconds = 1
	cfgVal.Browser.Enabled = false
	cfgVal.Browser.DelaySeconds = 0
	cfgVal.UI.ClearScreen = false
	cfgVal.UI.Language = "en"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Project.Dir, cfgVal.Paths.StateDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	return builder.cfg
}

// WithMode selects the server strategy.
func WithMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.Mode = mode
	}
}

// WithPort sets the static server port.
func WithPort(port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.Port = port
	}
}

// WithDevCommands replaces the runtime check, install, and dev-server commands.
func WithDevCommands(runtimeCheck, install, command string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dev.RuntimeCheck = runtimeCheck
		b.cfg.Dev.InstallCommand = install
		b.cfg.Dev.Command = command
	}
}

// WithStatusListen sets the dev-mode status listener address.
func WithStatusListen(address string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Status.Listen = address
	}
}

// WithBuildOutput creates the build directory with an index.html.
func WithBuildOutput(index string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.cfg.Project.Dir, b.cfg.Server.BuildDir)
		WriteFile(b.t, filepath.Join(dir, "index.html"), index)
	}
}

// BaseDir returns the root temp directory for the config.
func BaseDir(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithMutator applies fn to the config after the defaults are set.
func WithMutator(fn func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		fn(b.cfg)
	}
}
