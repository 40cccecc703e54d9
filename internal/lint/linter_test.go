package lint

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLintCleanTree(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"index.md":       "# Home\n\nSee the [guide](guide/setup.md).\n",
		"guide/setup.md": "# Setup\n\nBack to [home](../index.md).\n",
	})

	report, err := NewLinter(dir).Run()
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if report.Files != 2 {
		t.Fatalf("files = %d, want 2", report.Files)
	}
	if report.HasIssues() {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestLintBrokenRelativeLink(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"index.md": "# Home\n\nSee [missing](gone.md) and [ok](other.md).\n",
		"other.md": "# Other\n",
	})

	report, err := NewLinter(dir).Run()
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", report.Issues)
	}
	issue := report.Issues[0]
	if issue.Rule != RuleBrokenLink {
		t.Fatalf("rule = %s, want %s", issue.Rule, RuleBrokenLink)
	}
	if issue.File != "index.md" {
		t.Fatalf("file = %s", issue.File)
	}
}

func TestLintIgnoresExternalAndAbsoluteLinks(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"index.md": "# Home\n\n" +
			"[site](https://example.com/page.md) " +
			"[mail](mailto:docs@example.com) " +
			"[frag](#home) " +
			"[abs](/docs/page.md)\n",
	})

	report, err := NewLinter(dir).Run()
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if report.HasIssues() {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestLintDuplicateAnchors(t *testing.T) {
	dir := writeDocs(t, map[string]string{
		"page.md": "# Overview\n\ntext\n\n## Usage\n\nmore\n\n## Usage\n\neven more\n\n## Usage\n",
	})

	report, err := NewLinter(dir).Run()
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	// Reported once per duplicated anchor, not once per extra occurrence.
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", report.Issues)
	}
	if report.Issues[0].Rule != RuleDuplicateAnchor {
		t.Fatalf("rule = %s", report.Issues[0].Rule)
	}
}

func TestAnchorSlug(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Getting Started", "getting-started"},
		{"  Trim Me  ", "trim-me"},
		{"API & Reference!", "api-reference"},
		{"snake_case_heading", "snake-case-heading"},
		{"Versión Española", "versión-española"},
		{"Already-dashed", "already-dashed"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := AnchorSlug(tt.heading); got != tt.want {
			t.Errorf("AnchorSlug(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}
