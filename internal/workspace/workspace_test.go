package workspace

import (
	"os"
	"testing"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(t.TempDir())

	if m.Path() != "" {
		t.Fatal("path should be empty before Create")
	}

	if err := m.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	path := m.Path()
	if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		t.Fatalf("workspace dir missing: %v", err)
	}

	sub, err := m.Subdir("checkout")
	if err != nil {
		t.Fatalf("Subdir failed: %v", err)
	}
	if fi, err := os.Stat(sub); err != nil || !fi.IsDir() {
		t.Fatalf("subdir missing: %v", err)
	}

	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("workspace should be removed after Cleanup")
	}
	if m.Path() != "" {
		t.Fatal("path should reset after Cleanup")
	}
}

func TestSubdirRequiresCreate(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Subdir("x"); err == nil {
		t.Fatal("expected error before Create")
	}
}

func TestCleanupWithoutCreate(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup on fresh manager should be a no-op: %v", err)
	}
}
