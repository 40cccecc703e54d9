package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/hypersql/docpub/internal/config"
	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/logfields"
	"github.com/hypersql/docpub/internal/pipeline"
	"github.com/hypersql/docpub/internal/publish"
	"github.com/hypersql/docpub/internal/runstore"
	"github.com/hypersql/docpub/internal/setup"
	"github.com/hypersql/docpub/internal/site"
	"github.com/hypersql/docpub/internal/trigger"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI defines the command tree and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docpub.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" help:"Execute one pipeline run for a trigger event"`
	Build   BuildCmd   `cmd:"" help:"Set up the environment and build the site without publishing"`
	Publish PublishCmd `cmd:"" help:"Publish an existing artifact directory to the hosting branch"`
	Daemon  DaemonCmd  `cmd:"" help:"Run continuously: webhooks, schedule, metrics"`
	Lint    LintCmd    `cmd:"" help:"Lint markdown sources for broken links and duplicate anchors"`
	Verify  VerifyCmd  `cmd:"" help:"Verify internal links in a built artifact"`
	Watch   WatchCmd   `cmd:"" help:"Watch sources and rebuild on change"`
	History HistoryCmd `cmd:"" help:"Show recent pipeline runs"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration and re-applies its logging section.
// The --verbose flag always wins over the configured level.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if !root.Verbose {
		slog.SetDefault(cfg.Logging.NewLogger())
	}
	return cfg, nil
}

// newRunner wires the pipeline from configuration.
func newRunner(cfg *config.Config, opts ...pipeline.Option) *pipeline.Runner {
	evaluator := trigger.NewEvaluator(cfg.Publish.Owner, cfg.Publish.SourceBranch, cfg.Publish.Enabled)
	provisioner := setup.NewProvisioner(cfg.Setup, cfg.Site.SourceDir)
	builder := site.NewBuilder(cfg.Build, cfg.Site.SourceDir)
	publisher := publish.NewPublisher(cfg.Publish)

	opts = append([]pipeline.Option{pipeline.WithTimeout(cfg.Build.Timeout.Std())}, opts...)
	return pipeline.NewRunner(evaluator, provisioner, builder, publisher, opts...)
}

// openStore opens the sqlite run store, or a noop store when persistence
// is not configured.
func openStore(cfg *config.Config) runstore.Store {
	if cfg.Daemon.StorePath == "" {
		return runstore.NoopStore{}
	}
	store, err := runstore.NewSQLiteStore(cfg.Daemon.StorePath)
	if err != nil {
		slog.Warn("Run store unavailable, continuing without persistence",
			logfields.Path(cfg.Daemon.StorePath),
			logfields.Error(err))
		return runstore.NoopStore{}
	}
	return store
}

// runFailed wraps a stage error so the process exits with a stable code even
// when the stage returned an unclassified error.
func runFailed(err error) error {
	var pe *pkgerrors.PipelineError
	if errors.As(err, &pe) {
		return err
	}
	return pkgerrors.Wrap(err, pkgerrors.CategoryInternal, pkgerrors.SeverityError, "pipeline run failed")
}
