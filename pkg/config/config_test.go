package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client.Endpoint != "127.0.0.1:20000" || cfg.Client.FrameName != "mocap" {
		t.Fatalf("client = %+v", cfg.Client)
	}
	if cfg.Client.DialTimeout() != 5*time.Second || cfg.Client.IdlePoll() != 50*time.Millisecond {
		t.Fatalf("durations = %v %v", cfg.Client.DialTimeout(), cfg.Client.IdlePoll())
	}
	if cfg.Repository.OutboxCapacity != 64 || cfg.Demo.Format != "cbor" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mocap.yaml")
	yaml := `
log:
  level: debug
client:
  endpoint: "10.0.0.5:7000"
  max_payload_size: 1024
  shutdown_timeout_ms: 250
repository:
  outbox_capacity: 8
demo:
  format: JSON
  rate_hz: 120
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("MOCAP_CLIENT_ENDPOINT", "192.168.1.2:20000")
	t.Setenv("MOCAP_DEMO_JOINTS", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Client.Endpoint != "192.168.1.2:20000" {
		t.Fatalf("env override not applied: %q", cfg.Client.Endpoint)
	}
	if cfg.Client.MaxPayloadSize != 1024 || cfg.Client.ShutdownTimeout() != 250*time.Millisecond {
		t.Fatalf("client = %+v", cfg.Client)
	}
	if cfg.Repository.OutboxCapacity != 8 || cfg.Repository.InboxCapacity != 64 {
		t.Fatalf("repository = %+v", cfg.Repository)
	}
	if cfg.Demo.Format != "json" || cfg.Demo.RateHz != 120 || cfg.Demo.Joints != 5 {
		t.Fatalf("demo = %+v", cfg.Demo)
	}
}

func TestConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	if err := os.WriteFile(path, []byte("client:\n  frame_name: skeleton\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("MOCAP_CONFIG", path)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Client.FrameName != "skeleton" {
		t.Fatalf("frame_name = %q", cfg.Client.FrameName)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"level":      "log:\n  level: loud\n",
		"frame name": "client:\n  frame_name: quit\n",
		"format":     "demo:\n  format: xml\n",
		"rate":       "demo:\n  rate_hz: 0\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected a validation error", name)
		}
	}
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("client: [unterminated\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected a read error, got %v", err)
	}
}
