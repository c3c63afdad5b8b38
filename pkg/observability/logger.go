// Package observability contains logging setup for the mocapstream tools.
package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"mocapstream/pkg/config"
)

// Logger is a configured zap.Logger plus the means to undo its global
// installation.
type Logger struct {
	*zap.Logger
	closers []func() error
	undo    []func()
}

// SetupLogger builds a zap.Logger from c, installs it as the global logger
// and redirects the stdlib log package. Call Close when done; it syncs,
// closes log files and restores the previous globals.
func SetupLogger(c config.LogConfig) (*Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	encCfg := encoderConfig(c.Development)
	var encoder zapcore.Encoder
	if strings.EqualFold(c.Format, "json") {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	l := &Logger{}
	var cores []zapcore.Core
	for _, out := range c.Outputs {
		ws, err := l.sink(out, c)
		if err != nil {
			l.closeFiles()
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, ws, level))
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	}
	if c.Development {
		opts = append(opts, zap.Development())
	}
	l.Logger = zap.New(zapcore.NewTee(cores...), opts...)
	l.undo = append(l.undo, zap.ReplaceGlobals(l.Logger))
	if restore, err := zap.RedirectStdLogAt(l.Logger, zap.InfoLevel); err == nil {
		l.undo = append(l.undo, restore)
	}
	return l, nil
}

// Close flushes the logger and restores the globals replaced by SetupLogger.
func (l *Logger) Close() error {
	_ = l.Sync()
	for i := len(l.undo) - 1; i >= 0; i-- {
		l.undo[i]()
	}
	return l.closeFiles()
}

func (l *Logger) sink(out string, c config.LogConfig) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(out) {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	if c.Rotation.Enable {
		lj := &lumberjack.Logger{
			Filename:   rotatedFilename(out, c),
			MaxSize:    max(c.Rotation.MaxSizeMB, 10),
			MaxBackups: max(c.Rotation.MaxBackups, 1),
			MaxAge:     max(c.Rotation.MaxAgeDays, 7),
			Compress:   c.Rotation.Compress,
		}
		l.closers = append(l.closers, lj.Close)
		return zapcore.AddSync(lj), nil
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log output %s: %w", out, err)
		}
	}
	f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log output %s: %w", out, err)
	}
	l.closers = append(l.closers, f.Close)
	return zapcore.Lock(f), nil
}

func (l *Logger) closeFiles() error {
	var first error
	for _, c := range l.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	l.closers = nil
	return first
}

func parseLevel(s string) (zap.AtomicLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel), nil
	}
	if s == "warning" {
		s = "warn"
	}
	return zap.ParseAtomicLevel(s)
}

func encoderConfig(dev bool) zapcore.EncoderConfig {
	if dev {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// rotatedFilename prefers the rotation filename when one is configured.
func rotatedFilename(out string, c config.LogConfig) string {
	if name := strings.TrimSpace(c.Rotation.Filename); name != "" {
		return name
	}
	return out
}
