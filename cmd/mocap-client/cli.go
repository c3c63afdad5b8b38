package main

import (
	"flag"
	"time"
)

// Options holds CLI options. Zero values leave the configuration untouched.
type Options struct {
	ConfigPath string
	Endpoint   string
	Format     string
	RateHz     int
	Duration   time.Duration
	Send       bool
	Recv       bool
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("mocap-client", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.StringVar(&opts.Endpoint, "endpoint", "", "Peer address host:port (overrides client.endpoint)")
	fs.StringVar(&opts.Format, "format", "", "Sample body format: json, cbor or proto (overrides demo.format)")
	fs.IntVar(&opts.RateHz, "rate", 0, "Samples per second (overrides demo.rate_hz)")
	fs.DurationVar(&opts.Duration, "duration", 0, "Stop after this long; 0 runs until interrupted")
	fs.BoolVar(&opts.Send, "send", true, "Send synthetic samples")
	fs.BoolVar(&opts.Recv, "recv", true, "Consume samples sent by the peer")
	_ = fs.Parse(args)
	return opts
}
