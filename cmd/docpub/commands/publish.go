package commands

import (
	"context"
	"fmt"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/publish"
	"github.com/hypersql/docpub/internal/site"
)

// PublishCmd pushes an already-built artifact to the hosting branch. The
// trigger gate does not apply here; this is a deliberate operator action.
type PublishCmd struct {
	ArtifactDir string `short:"a" help:"Artifact directory to publish (defaults to the configured build output)"`
	Commit      string `help:"Source commit SHA recorded in the publish commit message"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if !cfg.Publish.Enabled {
		return pkgerrors.New(pkgerrors.CategoryConfig, pkgerrors.SeverityFatal,
			"publishing is disabled in the configuration")
	}

	artifactDir := p.ArtifactDir
	if artifactDir == "" {
		artifactDir = site.NewBuilder(cfg.Build, cfg.Site.SourceDir).ArtifactDir()
	}

	publisher := publish.NewPublisher(cfg.Publish)
	result, err := publisher.Publish(context.Background(), artifactDir, p.Commit)
	if err != nil {
		return err
	}

	if result.UpToDate {
		fmt.Printf("Hosting branch %s already up to date\n", cfg.Publish.Branch)
		return nil
	}
	fmt.Printf("Published to %s (%s)\n", cfg.Publish.Branch, shortSHA(result.Commit))
	return nil
}
