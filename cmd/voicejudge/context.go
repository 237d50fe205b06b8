package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"voicejudge/internal/config"
	"voicejudge/internal/faults"
	"voicejudge/internal/logging"
)

type commandContext struct {
	configFlag *string
	envFlag    *string

	envOnce sync.Once
	envErr  error

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFlag:    envFlag,
	}
}

// loadEnv reads the env file once. A missing file is not an error; variables
// already set in the environment win.
func (c *commandContext) loadEnv() error {
	c.envOnce.Do(func() {
		if c.envFlag == nil {
			return
		}
		path := strings.TrimSpace(*c.envFlag)
		if path == "" {
			return
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.envErr = faults.Wrap(faults.ErrConfiguration, "cli", "load env", path, err)
		}
	})
	return c.envErr
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = faults.Wrap(faults.ErrConfiguration, "cli", "load config", resolved, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = faults.Wrap(faults.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// logger builds the command logger. Participant-facing commands keep log
// lines off the console so they never land on the session screen.
func (c *commandContext) logger(quietConsole bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, quietConsole)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "cli", "logging", "", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatFloat(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, value)
}
