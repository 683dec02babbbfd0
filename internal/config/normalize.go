package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// PortEnv overrides server.port when set.
const PortEnv = "OFICINA_PORT"

func (c *Config) normalize() error {
	if err := c.normalizeProject(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeDev()
	c.normalizeConnectivity()
	c.normalizePackager()
	c.normalizeLogging()
	c.UI.Language = strings.TrimSpace(c.UI.Language)
	if c.UI.Language == "" {
		c.UI.Language = defaultLanguage
	}
	return nil
}

func (c *Config) normalizeProject() error {
	dir := strings.TrimSpace(c.Project.Dir)
	if dir == "" {
		dir = detectProjectDir()
	}
	expanded, err := expandPath(dir)
	if err != nil {
		return fmt.Errorf("project.dir: %w", err)
	}
	c.Project.Dir = expanded
	return nil
}

// detectProjectDir prefers the executable's own directory when it looks like
// the application root (a packaged launcher sits next to package.json or the
// build output), and falls back to the working directory.
func detectProjectDir() string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		for _, marker := range []string{"package.json", defaultBuildDir} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() error {
	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	if c.Server.Mode == "" {
		c.Server.Mode = defaultServerMode
	}
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.Host == "" {
		c.Server.Host = defaultServerHost
	}
	c.Server.BuildDir = strings.TrimSpace(c.Server.BuildDir)
	if c.Server.BuildDir == "" {
		c.Server.BuildDir = defaultBuildDir
	}
	if raw, ok := os.LookupEnv(PortEnv); ok && strings.TrimSpace(raw) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", PortEnv, raw)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) normalizeDev() {
	c.Dev.RuntimeCheck = strings.TrimSpace(c.Dev.RuntimeCheck)
	c.Dev.RuntimeName = strings.TrimSpace(c.Dev.RuntimeName)
	if c.Dev.RuntimeName == "" {
		c.Dev.RuntimeName = firstField(c.Dev.RuntimeCheck)
	}
	c.Dev.MarkerDir = strings.TrimSpace(c.Dev.MarkerDir)
	if c.Dev.MarkerDir == "" {
		c.Dev.MarkerDir = defaultMarkerDir
	}
	c.Dev.InstallCommand = strings.TrimSpace(c.Dev.InstallCommand)
	c.Dev.Command = strings.TrimSpace(c.Dev.Command)
	c.Dev.DefaultURL = strings.TrimSpace(c.Dev.DefaultURL)
	if c.Dev.DefaultURL == "" {
		c.Dev.DefaultURL = defaultDevURL
	}
}

func (c *Config) normalizeConnectivity() {
	c.Connectivity.Target = strings.TrimSpace(c.Connectivity.Target)
	if c.Connectivity.Target == "" {
		c.Connectivity.Target = defaultConnectivityTarget
	}
}

func (c *Config) normalizePackager() {
	c.Packager.Command = strings.TrimSpace(c.Packager.Command)
	c.Packager.Entry = strings.TrimSpace(c.Packager.Entry)
	c.Packager.Name = strings.TrimSpace(c.Packager.Name)
	c.Packager.Icon = strings.TrimSpace(c.Packager.Icon)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstField(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
