// Package setup provisions the build environment: it verifies the generator
// runtime is available (optionally pinned to a version) and installs the
// declared dependencies. Failures here are fatal to the run.
package setup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/hypersql/docpub/internal/config"
	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/logfields"
)

// Provisioner prepares the environment for a build.
type Provisioner struct {
	cfg     config.SetupConfig
	workDir string

	// lookPath and runCommand are swappable for tests.
	lookPath   func(string) (string, error)
	runCommand func(ctx context.Context, dir string, argv []string) (string, error)
}

// NewProvisioner creates a provisioner for the given setup config, running
// install commands inside workDir.
func NewProvisioner(cfg config.SetupConfig, workDir string) *Provisioner {
	return &Provisioner{
		cfg:        cfg,
		workDir:    workDir,
		lookPath:   exec.LookPath,
		runCommand: runCommand,
	}
}

// Provision verifies the runtime and installs dependencies.
func (p *Provisioner) Provision(ctx context.Context) error {
	if p.cfg.Runtime != "" {
		if err := p.checkRuntime(ctx); err != nil {
			return err
		}
	}

	if len(p.cfg.Install) > 0 {
		slog.Info("Installing dependencies", logfields.Command(strings.Join(p.cfg.Install, " ")))
		out, err := p.runCommand(ctx, p.workDir, p.cfg.Install)
		if err != nil {
			return pkgerrors.SetupFailed("install", fmt.Errorf("%w: %s", err, lastLine(out)))
		}
	}

	return nil
}

// checkRuntime resolves the runtime binary and, when a version pin is
// configured, matches it as a substring of `<runtime> --version` output.
func (p *Provisioner) checkRuntime(ctx context.Context) error {
	path, err := p.lookPath(p.cfg.Runtime)
	if err != nil {
		return pkgerrors.SetupFailed("runtime", fmt.Errorf("runtime %q not found on PATH: %w", p.cfg.Runtime, err))
	}
	slog.Debug("Runtime resolved", logfields.Command(p.cfg.Runtime), logfields.Path(path))

	if p.cfg.RuntimeVersion == "" {
		return nil
	}

	out, err := p.runCommand(ctx, p.workDir, []string{p.cfg.Runtime, "--version"})
	if err != nil {
		return pkgerrors.SetupFailed("runtime", fmt.Errorf("could not query runtime version: %w", err))
	}
	if !strings.Contains(out, p.cfg.RuntimeVersion) {
		return pkgerrors.SetupFailed("runtime",
			fmt.Errorf("runtime version mismatch: want %q, reported %q", p.cfg.RuntimeVersion, strings.TrimSpace(out)))
	}

	return nil
}

// runCommand executes argv in dir and returns combined output.
func runCommand(ctx context.Context, dir string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

// lastLine returns the final non-empty output line, for compact error context.
func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
