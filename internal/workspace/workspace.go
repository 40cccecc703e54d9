// Package workspace manages scratch directories for publish clones and
// preview builds. Directories are timestamped and removed on Cleanup.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hypersql/docpub/internal/logfields"
)

// Manager handles scratch workspace directories.
type Manager struct {
	baseDir string
	tempDir string
}

// NewManager creates a workspace manager rooted at baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates a timestamped workspace directory.
func (m *Manager) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	dir, err := os.MkdirTemp(m.baseDir, fmt.Sprintf("docpub-%s-", timestamp))
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.tempDir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory path. Empty until Create succeeds.
func (m *Manager) Path() string {
	return m.tempDir
}

// Cleanup removes the workspace directory and all contents.
func (m *Manager) Cleanup() error {
	if m.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(m.tempDir); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.tempDir))
	m.tempDir = ""
	return nil
}

// Subdir creates and returns a named subdirectory inside the workspace.
func (m *Manager) Subdir(name string) (string, error) {
	if m.tempDir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	dir := filepath.Join(m.tempDir, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create workspace subdir %s: %w", name, err)
	}
	return dir, nil
}
