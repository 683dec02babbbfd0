package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Project locates the frontend application the launcher serves.
type Project struct {
	Dir string `toml:"dir" yaml:"dir"`
}

// Server selects the launcher strategy and its listening address.
type Server struct {
	Mode               string `toml:"mode" yaml:"mode"`
	Host               string `toml:"host" yaml:"host"`
	Port               int    `toml:"port" yaml:"port"`
	BuildDir           string `toml:"build_dir" yaml:"build_dir"`
	StopTimeoutSeconds int    `toml:"stop_timeout_seconds" yaml:"stop_timeout_seconds"`
}

// Dev contains the frontend dev-server commands.
type Dev struct {
	RuntimeCheck      string `toml:"runtime_check" yaml:"runtime_check"`
	RuntimeName       string `toml:"runtime_name" yaml:"runtime_name"`
	RuntimeHint       string `toml:"runtime_hint" yaml:"runtime_hint"`
	MarkerDir         string `toml:"marker_dir" yaml:"marker_dir"`
	InstallCommand    string `toml:"install_command" yaml:"install_command"`
	InstallWhenOnline bool   `toml:"install_when_online" yaml:"install_when_online"`
	Command           string `toml:"command" yaml:"command"`
	DefaultURL        string `toml:"default_url" yaml:"default_url"`
	URLTimeoutSeconds int    `toml:"url_timeout_seconds" yaml:"url_timeout_seconds"`
}

// Connectivity configures the outbound reachability probe.
type Connectivity struct {
	Target          string `toml:"target" yaml:"target"`
	TimeoutSeconds  int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	IntervalSeconds int    `toml:"interval_seconds" yaml:"interval_seconds"`
}

// Browser controls the delayed browser launch.
type Browser struct {
	Enabled      bool `toml:"enabled" yaml:"enabled"`
	DelaySeconds int  `toml:"delay_seconds" yaml:"delay_seconds"`
}

// Status configures the live status endpoints.
type Status struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Listen  string `toml:"listen" yaml:"listen"`
}

// Packager configures the bundler invocation.
type Packager struct {
	Command string `toml:"command" yaml:"command"`
	Entry   string `toml:"entry" yaml:"entry"`
	Name    string `toml:"name" yaml:"name"`
	Icon    string `toml:"icon" yaml:"icon"`
}

// Paths contains launcher-owned directories.
type Paths struct {
	StateDir string `toml:"state_dir" yaml:"state_dir"`
	LogDir   string `toml:"log_dir" yaml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format" yaml:"format"`
	Level         string `toml:"level" yaml:"level"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// UI controls console presentation.
type UI struct {
	Language    string `toml:"language" yaml:"language"`
	ClearScreen bool   `toml:"clear_screen" yaml:"clear_screen"`
}

// Config encapsulates all configuration values for the launcher.
//
// Configuration sections by subsystem:
//   - Project: where the frontend application lives
//   - Server: launcher mode (dev or static), host, port, build output
//   - Dev: runtime check, dependency install, and dev-server commands
//   - Connectivity: probe target, timeout, and polling interval
//   - Browser: delayed browser launch
//   - Status: live status endpoints for the frontend
//   - Packager: bundler command used by `oficina package`
//   - Paths: state (lock, journal) and log directories
//   - Logging: log format, level, and retention
//   - UI: console language and screen clearing
type Config struct {
	Project      Project      `toml:"project" yaml:"project"`
	Server       Server       `toml:"server" yaml:"server"`
	Dev          Dev          `toml:"dev" yaml:"dev"`
	Connectivity Connectivity `toml:"connectivity" yaml:"connectivity"`
	Browser      Browser      `toml:"browser" yaml:"browser"`
	Status       Status       `toml:"status" yaml:"status"`
	Packager     Packager     `toml:"packager" yaml:"packager"`
	Paths        Paths        `toml:"paths" yaml:"paths"`
	Logging      Logging      `toml:"logging" yaml:"logging"`
	UI           UI           `toml:"ui" yaml:"ui"`
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("oficina.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// BuildOutputDir returns the absolute build-output directory inside the project.
func (c *Config) BuildOutputDir() string {
	if filepath.IsAbs(c.Server.BuildDir) {
		return c.Server.BuildDir
	}
	return filepath.Join(c.Project.Dir, c.Server.BuildDir)
}

// MarkerDir returns the absolute dependency-marker directory inside the project.
func (c *Config) MarkerDir() string {
	if filepath.IsAbs(c.Dev.MarkerDir) {
		return c.Dev.MarkerDir
	}
	return filepath.Join(c.Project.Dir, c.Dev.MarkerDir)
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "oficina.lock")
}

// JournalPath returns the SQLite journal path.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// ServerAddress returns host:port for the static server.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ProbeTimeout returns the connectivity probe timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Connectivity.TimeoutSeconds) * time.Second
}

// ProbeInterval returns the connectivity polling interval.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.Connectivity.IntervalSeconds) * time.Second
}

// BrowserDelay returns the delay before opening the browser.
func (c *Config) BrowserDelay() time.Duration {
	return time.Duration(c.Browser.DelaySeconds) * time.Second
}

// StopTimeout returns the grace period granted to the server before a forced kill.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Server.StopTimeoutSeconds) * time.Second
}

// URLTimeout returns how long to wait for the dev server to announce its URL.
func (c *Config) URLTimeout() time.Duration {
	return time.Duration(c.Dev.URLTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ErrConfigExists is returned by WriteSample when the target already exists
// and overwrite is false.
var ErrConfigExists = errors.New("config file already exists")

// WriteSample writes the commented sample configuration to path, or to the
// default location when path is empty, and returns where it went.
func WriteSample(path string, overwrite bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	target, err := expandPath(strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return target, fmt.Errorf("%w at %s", ErrConfigExists, target)
		}
		return target, fmt.Errorf("open %s: %w", target, err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		_ = file.Close()
		return target, fmt.Errorf("write sample config: %w", err)
	}
	return target, file.Close()
}
