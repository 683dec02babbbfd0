package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"oficina/internal/config"
	"oficina/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// configDescription names the loaded file, or notes that defaults are in use.
func (c *commandContext) configDescription() string {
	if c.configExists {
		return c.configPath
	}
	return "defaults (" + c.configPath + " not found)"
}

// commandLogger writes to stderr when --verbose is set and discards otherwise.
// Only the run command keeps a log file.
func (c *commandContext) commandLogger(cfg *config.Config) *slog.Logger {
	if !c.verbose() {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg, "", true, "")
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
