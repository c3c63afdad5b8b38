// Package config provides YAML-based configuration loading for mocapstream.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Client holds the connection and loop settings
	Client ClientConfig `mapstructure:"client"`

	// Repository sizes the in-memory store shared with the hooks
	Repository RepositoryConfig `mapstructure:"repository"`

	// Demo drives the synthetic sample source of mocap-client
	Demo DemoConfig `mapstructure:"demo"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/mocapstream.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Client: ClientConfig{
			Endpoint:          "127.0.0.1:20000",
			MaxPayloadSize:    64 * 1024,
			FrameName:         "mocap",
			DialTimeoutMS:     5000,
			ShutdownTimeoutMS: 5000,
			IdlePollMS:        50,
		},
		Repository: RepositoryConfig{OutboxCapacity: 64, InboxCapacity: 64},
		Demo:       DemoConfig{Format: "cbor", RateHz: 60, Joints: 20},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix MOCAP and `.`/`-` are replaced with `_`.
// Example: MOCAP_CLIENT_ENDPOINT=10.0.0.5:20000
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MOCAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	cfg.Log.setDefaults(v)
	cfg.Client.setDefaults(v)
	cfg.Repository.setDefaults(v)
	cfg.Demo.setDefaults(v)

	// Choose config file
	if path == "" {
		if envPath := os.Getenv("MOCAP_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search common locations with base name `mocapstream`
		v.SetConfigName("mocapstream")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mocapstream"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	return errors.Join(c.Log.validate(), c.Client.validate(), c.Repository.validate(), c.Demo.validate())
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
