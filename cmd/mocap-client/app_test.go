package main

import (
	"reflect"
	"testing"
	"time"

	"mocapstream/pkg/config"
)

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	opts := ParseFlags([]string{"-endpoint", "10.1.1.1:9000", "-format", "json", "-rate", "30", "-duration", "1500ms", "-recv=false"})
	applyOverrides(cfg, opts)
	if cfg.Client.Endpoint != "10.1.1.1:9000" || cfg.Demo.Format != "json" || cfg.Demo.RateHz != 30 {
		t.Fatalf("cfg = %+v %+v", cfg.Client, cfg.Demo)
	}
	if cfg.Demo.Duration() != 2*time.Second {
		t.Fatalf("duration = %v", cfg.Demo.Duration())
	}
	if !opts.Send || opts.Recv {
		t.Fatalf("send/recv = %v/%v", opts.Send, opts.Recv)
	}
}

func TestApplyOverridesKeepsConfig(t *testing.T) {
	cfg := config.Default()
	applyOverrides(cfg, ParseFlags(nil))
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Fatalf("empty flags must not change the configuration")
	}
}
