// Package site runs the external static-site generator and validates the
// artifact directory it produces. The generator itself is a black box; docpub
// only owns the invocation and the artifact contract.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hypersql/docpub/internal/config"
	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/logfields"
)

// Builder invokes the configured generator command.
type Builder struct {
	cfg       config.BuildConfig
	sourceDir string
}

// NewBuilder creates a builder running inside sourceDir.
func NewBuilder(cfg config.BuildConfig, sourceDir string) *Builder {
	return &Builder{cfg: cfg, sourceDir: sourceDir}
}

// ArtifactDir returns the absolute artifact directory path.
func (b *Builder) ArtifactDir() string {
	if filepath.IsAbs(b.cfg.ArtifactDir) {
		return b.cfg.ArtifactDir
	}
	return filepath.Join(b.sourceDir, b.cfg.ArtifactDir)
}

// Build runs the generator and validates the artifact. A non-zero generator
// exit or a missing/empty artifact directory is fatal; there is no partial
// artifact recovery.
func (b *Builder) Build(ctx context.Context) (string, error) {
	argv := b.cfg.Command
	if len(argv) == 0 {
		return "", pkgerrors.ConfigRequired("build.command")
	}

	cmdline := strings.Join(argv, " ")
	slog.Info("Running site generator", logfields.Command(cmdline), logfields.Path(b.sourceDir))

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = b.sourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", pkgerrors.GeneratorFailed(cmdline, fmt.Errorf("run ceiling exceeded: %w", ctx.Err()))
		}
		return "", pkgerrors.GeneratorFailed(cmdline, err)
	}

	artifact := b.ArtifactDir()
	if err := validateArtifact(artifact); err != nil {
		return "", err
	}

	slog.Info("Site generated",
		logfields.Path(artifact),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return artifact, nil
}

// validateArtifact ensures the generator produced a non-empty directory.
func validateArtifact(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return pkgerrors.ArtifactInvalid(dir, "artifact directory missing after build")
	}
	if !fi.IsDir() {
		return pkgerrors.ArtifactInvalid(dir, "artifact path is not a directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return pkgerrors.ArtifactInvalid(dir, "artifact directory unreadable")
	}
	if len(entries) == 0 {
		return pkgerrors.ArtifactInvalid(dir, "artifact directory is empty")
	}
	return nil
}
