package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDev(); err != nil {
		return err
	}
	if err := c.validateConnectivity(); err != nil {
		return err
	}
	if err := c.validateStatus(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Browser.DelaySeconds < 0 {
		return errors.New("browser.delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	switch c.Server.Mode {
	case ModeDev, ModeStatic:
	default:
		return fmt.Errorf("server.mode: unsupported value %q (use %q or %q)", c.Server.Mode, ModeDev, ModeStatic)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.StopTimeoutSeconds <= 0 {
		return errors.New("server.stop_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDev() error {
	if c.Server.Mode != ModeDev {
		return nil
	}
	if c.Dev.RuntimeCheck == "" {
		return errors.New("dev.runtime_check must be set when server.mode is dev")
	}
	if c.Dev.Command == "" {
		return errors.New("dev.command must be set when server.mode is dev")
	}
	if c.Dev.URLTimeoutSeconds <= 0 {
		return errors.New("dev.url_timeout_seconds must be positive")
	}
	parsed, err := url.Parse(c.Dev.DefaultURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("dev.default_url: invalid URL %q", c.Dev.DefaultURL)
	}
	return nil
}

func (c *Config) validateConnectivity() error {
	if _, _, err := net.SplitHostPort(c.Connectivity.Target); err != nil {
		return fmt.Errorf("connectivity.target must be host:port: %w", err)
	}
	if c.Connectivity.TimeoutSeconds <= 0 {
		return errors.New("connectivity.timeout_seconds must be positive")
	}
	if c.Connectivity.IntervalSeconds <= 0 {
		return errors.New("connectivity.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateStatus() error {
	listen := strings.TrimSpace(c.Status.Listen)
	if listen == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(listen); err != nil {
		return fmt.Errorf("status.listen must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
