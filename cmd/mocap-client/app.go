package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mocapstream/pkg/client"
	"mocapstream/pkg/config"
	"mocapstream/pkg/mocap"
	"mocapstream/pkg/observability"
	"mocapstream/pkg/protocol"
	"mocapstream/pkg/protocol/codec"
	"mocapstream/pkg/repository"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	applyOverrides(cfg, opts)

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Close() }()

	format, err := protocol.ParseFormat(cfg.Demo.Format)
	if err != nil {
		zap.L().Error("invalid sample format", zap.Error(err))
		return 1
	}
	reg, err := mocap.NewRegistry()
	if err != nil {
		zap.L().Error("codec registry", zap.Error(err))
		return 1
	}

	zap.L().Info("mocap-client started", zap.String("endpoint", cfg.Client.Endpoint))
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	store := repository.New(repository.Options{
		OutboxCapacity: cfg.Repository.OutboxCapacity,
		InboxCapacity:  cfg.Repository.InboxCapacity,
		MaxPayload:     cfg.Client.MaxPayloadSize,
	})
	defer store.Close()

	c := client.New(cfg.Client.Endpoint, cfg.Client.MaxPayloadSize, store,
		client.WithLogger(zap.L().Named("client")),
		client.WithFrameName(cfg.Client.FrameName),
		client.WithDialTimeout(cfg.Client.DialTimeout()),
		client.WithShutdownTimeout(cfg.Client.ShutdownTimeout()),
		client.WithIdlePoll(cfg.Client.IdlePoll()),
		client.WithSendRate(cfg.Client.SendRateBytesPerSec),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d := cfg.Demo.Duration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var producer client.Producer[*repository.Store]
	var consumer client.Consumer[*repository.Store]
	if opts.Send {
		producer = client.ProducerFunc[*repository.Store](repository.Produce)
	}
	if opts.Recv {
		consumer = client.ConsumerFunc[*repository.Store](repository.Consume)
	}
	if err := c.Connect(ctx, producer, consumer); err != nil {
		zap.L().Error("connect failed", zap.Error(err))
		return 1
	}

	if opts.Send {
		go generate(ctx, store, reg, format, cfg.Demo)
	}
	if opts.Recv {
		go report(ctx, store, reg)
	}

	zap.L().Info("streaming; press Ctrl+C to exit")
	select {
	case <-ctx.Done():
	case <-c.Done():
		zap.L().Info("session ended by peer")
	}

	if err := c.Close(); err != nil {
		zap.L().Warn("disconnect", zap.Error(err))
	}
	zap.L().Info("mocap-client stopped",
		zap.Any("client", c.Stats()),
		zap.Any("repository", store.Metrics()))
	return 0
}

func applyOverrides(cfg *config.Config, opts Options) {
	if opts.Endpoint != "" {
		cfg.Client.Endpoint = opts.Endpoint
	}
	if opts.Format != "" {
		cfg.Demo.Format = opts.Format
	}
	if opts.RateHz > 0 {
		cfg.Demo.RateHz = opts.RateHz
	}
	if opts.Duration > 0 {
		cfg.Demo.DurationS = int(opts.Duration.Round(time.Second) / time.Second)
	}
}

// generate pushes one encoded sample per tick until ctx ends.
func generate(ctx context.Context, store *repository.Store, reg *codec.Registry, format protocol.Format, demo config.DemoConfig) {
	g := mocap.NewGenerator(demo.Joints, time.Now())
	t := time.NewTicker(time.Second / time.Duration(demo.RateHz))
	defer t.Stop()
	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			b, err := mocap.Append(buf[:0], reg, format, g.Next(now))
			if err != nil {
				zap.L().Warn("encode sample", zap.Error(err))
				continue
			}
			buf = b
			if err := store.Push(b); err != nil {
				zap.L().Warn("queue sample", zap.Error(err))
			}
		}
	}
}

// report decodes received samples and logs one line per second.
func report(ctx context.Context, store *repository.Store, reg *codec.Registry) {
	var count int
	nextLog := time.Now().Add(time.Second)
	for {
		b, err := store.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, repository.ErrClosed) {
				zap.L().Warn("receive sample", zap.Error(err))
			}
			return
		}
		s, f, err := mocap.Decode(reg, b)
		if err != nil {
			zap.L().Warn("decode sample", zap.Int("bytes", len(b)), zap.Error(err))
			continue
		}
		count++
		if now := time.Now(); now.After(nextLog) {
			zap.L().Info("samples received",
				zap.Int("count", count),
				zap.Uint64("last_seq", s.Seq),
				zap.Stringer("format", f),
				zap.Int("joints", len(s.Joints)),
				zap.Duration("latency", now.Sub(s.Time())))
			nextLog = now.Add(time.Second)
		}
	}
}
