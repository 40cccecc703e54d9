package linkverify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, files map[string]string) string {
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

func TestExtractLinksFromReader(t *testing.T) {
	doc := `<html><head>
<link rel="stylesheet" href="css/site.css">
<script src="js/app.js"></script>
</head><body>
<a href="guide/index.html">Guide</a>
<img src="img/logo.png">
<a>no href</a>
</body></html>`

	links, err := ExtractLinksFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(links) != 4 {
		t.Fatalf("expected 4 links, got %d: %v", len(links), links)
	}

	byURL := map[string]Link{}
	for _, l := range links {
		byURL[l.URL] = l
	}
	if l := byURL["css/site.css"]; l.Tag != "link" || l.Attribute != "href" {
		t.Fatalf("stylesheet link: %+v", l)
	}
	if l := byURL["js/app.js"]; l.Tag != "script" || l.Attribute != "src" {
		t.Fatalf("script link: %+v", l)
	}
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"guide/index.html", true},
		{"/assets/logo.png", true},
		{"../other.html", true},
		{"https://example.com/", false},
		{"http://example.com/", false},
		{"//cdn.example.com/lib.js", false},
		{"mailto:docs@example.com", false},
		{"#section", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsInternal(tt.url); got != tt.want {
			t.Errorf("IsInternal(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestVerifyCleanArtifact(t *testing.T) {
	dir := writeArtifact(t, map[string]string{
		"index.html":       `<a href="guide/">Guide</a><img src="assets/logo.png">`,
		"guide/index.html": `<a href="../index.html">Home</a><a href="#usage">Usage</a>`,
		"assets/logo.png":  "png",
	})

	report, err := NewVerifier(dir).Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if report.Pages != 2 {
		t.Fatalf("pages = %d, want 2", report.Pages)
	}
	if !report.OK() {
		t.Fatalf("unexpected broken links: %v", report.Broken)
	}
}

func TestVerifyReportsBrokenLinks(t *testing.T) {
	dir := writeArtifact(t, map[string]string{
		"index.html": `<a href="missing/page.html">Gone</a><a href="https://example.com/missing">External</a>`,
	})

	report, err := NewVerifier(dir).Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(report.Broken) != 1 {
		t.Fatalf("expected 1 broken link, got %v", report.Broken)
	}
	b := report.Broken[0]
	if b.Page != "index.html" || b.Target != "missing/page.html" {
		t.Fatalf("unexpected broken entry: %+v", b)
	}
}

func TestVerifyRootRelativeLinks(t *testing.T) {
	dir := writeArtifact(t, map[string]string{
		"deep/nested/page.html": `<a href="/index.html">Home</a><a href="/nope.html">Gone</a>`,
		"index.html":            "<html></html>",
	})

	report, err := NewVerifier(dir).Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(report.Broken) != 1 || report.Broken[0].Target != "nope.html" {
		t.Fatalf("unexpected report: %+v", report.Broken)
	}
}

func TestVerifyDirectoryServedAsIndex(t *testing.T) {
	dir := writeArtifact(t, map[string]string{
		"index.html":       `<a href="guide/">Guide</a><a href="empty/">Empty</a>`,
		"guide/index.html": "<html></html>",
	})
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	report, err := NewVerifier(dir).Verify()
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	// A directory without index.html does not satisfy a pretty URL.
	if len(report.Broken) != 1 || report.Broken[0].Target != "empty" {
		t.Fatalf("unexpected report: %+v", report.Broken)
	}
}
