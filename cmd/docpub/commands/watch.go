package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hypersql/docpub/internal/preview"
	"github.com/hypersql/docpub/internal/site"
)

// WatchCmd rebuilds the site whenever the sources change. Authoring aid;
// never publishes.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	builder := site.NewBuilder(cfg.Build, cfg.Site.SourceDir)
	watcher := preview.NewWatcher(cfg.Site.SourceDir, func(ctx context.Context) error {
		buildCtx, cancel := context.WithTimeout(ctx, cfg.Build.Timeout.Std())
		defer cancel()
		_, err := builder.Build(buildCtx)
		return err
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx)
}
