package commands

import (
	"fmt"
	"path/filepath"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/lint"
)

// LintCmd lints the markdown sources.
type LintCmd struct {
	Dir string `short:"d" help:"Docs directory to lint (defaults to the configured docs dir)"`
}

func (l *LintCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	dir := l.Dir
	if dir == "" {
		dir = filepath.Join(cfg.Site.SourceDir, cfg.Site.DocsDir)
	}

	report, err := lint.NewLinter(dir).Run()
	if err != nil {
		return err
	}

	for _, issue := range report.Issues {
		fmt.Println(issue)
	}
	fmt.Printf("Linted %d files, %d issues\n", report.Files, len(report.Issues))

	if report.HasIssues() {
		return pkgerrors.New(pkgerrors.CategoryValidation, pkgerrors.SeverityError,
			fmt.Sprintf("%d lint issues found", len(report.Issues)))
	}
	return nil
}
