package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig contains the connection and loop settings.
type ClientConfig struct {
	// Endpoint is the peer address, "host:port".
	Endpoint string `mapstructure:"endpoint"`
	// MaxPayloadSize bounds payloads in both directions.
	MaxPayloadSize uint32 `mapstructure:"max_payload_size"`
	// FrameName is the single data frame kind exchanged with the peer.
	FrameName         string `mapstructure:"frame_name"`
	DialTimeoutMS     int    `mapstructure:"dial_timeout_ms"`
	ShutdownTimeoutMS int    `mapstructure:"shutdown_timeout_ms"`
	IdlePollMS        int    `mapstructure:"idle_poll_ms"`
	// SendRateBytesPerSec caps outgoing bytes; 0 disables shaping.
	SendRateBytesPerSec int64 `mapstructure:"send_rate_bytes_per_sec"`
}

func (c ClientConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

func (c ClientConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

func (c ClientConfig) IdlePoll() time.Duration {
	return time.Duration(c.IdlePollMS) * time.Millisecond
}

func (c ClientConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("client.endpoint", c.Endpoint)
	v.SetDefault("client.max_payload_size", c.MaxPayloadSize)
	v.SetDefault("client.frame_name", c.FrameName)
	v.SetDefault("client.dial_timeout_ms", c.DialTimeoutMS)
	v.SetDefault("client.shutdown_timeout_ms", c.ShutdownTimeoutMS)
	v.SetDefault("client.idle_poll_ms", c.IdlePollMS)
	v.SetDefault("client.send_rate_bytes_per_sec", c.SendRateBytesPerSec)
}

func (c *ClientConfig) validate() error {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Endpoint == "" {
		return fmt.Errorf("client.endpoint is required")
	}
	if c.MaxPayloadSize == 0 {
		return fmt.Errorf("client.max_payload_size must be positive")
	}
	if n := len(c.FrameName); n == 0 || n > 31 || c.FrameName == "quit" {
		return fmt.Errorf("invalid client.frame_name: %q", c.FrameName)
	}
	if c.DialTimeoutMS < 0 || c.ShutdownTimeoutMS < 0 || c.IdlePollMS < 0 || c.SendRateBytesPerSec < 0 {
		return fmt.Errorf("client timeouts and rates must not be negative")
	}
	return nil
}

// RepositoryConfig sizes the bounded queues of repository.Store.
type RepositoryConfig struct {
	OutboxCapacity int `mapstructure:"outbox_capacity"`
	InboxCapacity  int `mapstructure:"inbox_capacity"`
}

func (c RepositoryConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("repository.outbox_capacity", c.OutboxCapacity)
	v.SetDefault("repository.inbox_capacity", c.InboxCapacity)
}

func (c *RepositoryConfig) validate() error {
	if c.OutboxCapacity < 0 || c.InboxCapacity < 0 {
		return fmt.Errorf("repository capacities must not be negative")
	}
	return nil
}

// DemoConfig drives the synthetic sample source.
type DemoConfig struct {
	// Format of sample bodies: json, cbor or proto.
	Format string `mapstructure:"format"`
	RateHz int    `mapstructure:"rate_hz"`
	Joints int    `mapstructure:"joints"`
	// DurationS stops the demo after this many seconds; 0 runs until
	// interrupted.
	DurationS int `mapstructure:"duration_s"`
}

func (c DemoConfig) Duration() time.Duration { return time.Duration(c.DurationS) * time.Second }

func (c DemoConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("demo.format", c.Format)
	v.SetDefault("demo.rate_hz", c.RateHz)
	v.SetDefault("demo.joints", c.Joints)
	v.SetDefault("demo.duration_s", c.DurationS)
}

func (c *DemoConfig) validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "json", "cbor", "proto", "protobuf":
	default:
		return fmt.Errorf("invalid demo.format: %q", c.Format)
	}
	if c.RateHz <= 0 || c.Joints <= 0 || c.DurationS < 0 {
		return fmt.Errorf("demo.rate_hz and demo.joints must be positive")
	}
	return nil
}
