package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hypersql/docpub/internal/daemon"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/metrics"
	"github.com/hypersql/docpub/internal/pipeline"
)

// DaemonCmd runs the pipeline continuously: webhook intake, the weekly
// schedule, and the metrics endpoint.
type DaemonCmd struct {
	Listen string `short:"l" help:"Listen address override (defaults to the configured address)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if d.Listen != "" {
		cfg.Daemon.Listen = d.Listen
	}

	store := openStore(cfg)
	defer func() { _ = store.Close() }()

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	runner := newRunner(cfg,
		pipeline.WithStore(store),
		pipeline.WithRecorder(recorder),
	)

	opts := []daemon.Option{daemon.WithStore(store)}
	if cfg.Daemon.NATS != nil && cfg.Daemon.NATS.Enabled {
		notifier, err := daemon.NewNATSNotifier(cfg.Daemon.NATS)
		if err != nil {
			// The daemon is still useful without notifications.
			slog.Warn("NATS notifier unavailable", logfields.Error(err))
		} else {
			defer notifier.Close()
			opts = append(opts, daemon.WithNotifier(notifier))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.New(cfg, runner, opts...).Run(ctx, recorder.HTTPHandler())
}
