package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (c LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", c.Level)
	v.SetDefault("log.format", c.Format)
	v.SetDefault("log.outputs", c.Outputs)
	v.SetDefault("log.development", c.Development)
	v.SetDefault("log.rotation.enable", c.Rotation.Enable)
	v.SetDefault("log.rotation.filename", c.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", c.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", c.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", c.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", c.Rotation.Compress)
}

func (c *LogConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Level)
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if len(c.Outputs) == 0 {
		c.Outputs = []string{"stdout"}
	}
	return nil
}
