package commands

import (
	"fmt"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/linkverify"
	"github.com/hypersql/docpub/internal/site"
)

// VerifyCmd checks internal links inside a built artifact.
type VerifyCmd struct {
	ArtifactDir string `short:"a" help:"Artifact directory to verify (defaults to the configured build output)"`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	dir := v.ArtifactDir
	if dir == "" {
		dir = site.NewBuilder(cfg.Build, cfg.Site.SourceDir).ArtifactDir()
	}

	report, err := linkverify.NewVerifier(dir).Verify()
	if err != nil {
		return err
	}

	for _, broken := range report.Broken {
		fmt.Println(broken)
	}
	fmt.Printf("Checked %d pages, %d internal links, %d broken\n",
		report.Pages, report.Links, len(report.Broken))

	if !report.OK() {
		return pkgerrors.New(pkgerrors.CategoryValidation, pkgerrors.SeverityError,
			fmt.Sprintf("%d broken internal links", len(report.Broken)))
	}
	return nil
}
