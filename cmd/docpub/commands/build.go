package commands

import (
	"context"
	"fmt"

	"github.com/hypersql/docpub/internal/setup"
	"github.com/hypersql/docpub/internal/site"
)

// BuildCmd sets up the environment and builds the site. Nothing is published.
type BuildCmd struct {
	SkipSetup bool `help:"Skip environment provisioning (runtime check and dependency install)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Build.Timeout.Std())
	defer cancel()

	if !b.SkipSetup {
		provisioner := setup.NewProvisioner(cfg.Setup, cfg.Site.SourceDir)
		if err := provisioner.Provision(ctx); err != nil {
			return err
		}
	}

	builder := site.NewBuilder(cfg.Build, cfg.Site.SourceDir)
	artifactDir, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Site built at %s\n", artifactDir)
	return nil
}
