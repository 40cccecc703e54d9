package linkverify

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Broken describes one internal link whose target is missing from the artifact.
type Broken struct {
	Page   string // page containing the link, relative to the artifact root
	Link   Link
	Target string // resolved artifact-relative target path
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: <%s %s=%q> resolves to missing %s", b.Page, b.Link.Tag, b.Link.Attribute, b.Link.URL, b.Target)
}

// Report is the outcome of verifying one artifact tree.
type Report struct {
	Pages  int
	Links  int
	Broken []Broken
}

// OK reports whether every internal link resolved.
func (r *Report) OK() bool { return len(r.Broken) == 0 }

// Verifier checks internal links inside a built artifact directory.
type Verifier struct {
	artifactDir string
}

// NewVerifier creates a verifier for the artifact at dir.
func NewVerifier(dir string) *Verifier {
	return &Verifier{artifactDir: dir}
}

// Verify walks every HTML page in the artifact and resolves its internal
// links against the artifact tree. External links are not fetched.
func (v *Verifier) Verify() (*Report, error) {
	report := &Report{}

	err := filepath.WalkDir(v.artifactDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isHTML(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(v.artifactDir, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		links, err := ExtractLinks(p)
		if err != nil {
			return err
		}
		report.Pages++

		for _, l := range links {
			if !IsInternal(l.URL) {
				continue
			}
			report.Links++
			target := resolveTarget(rel, l.URL)
			if target == "" {
				continue
			}
			if !v.targetExists(target) {
				report.Broken = append(report.Broken, Broken{Page: rel, Link: l, Target: target})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// resolveTarget turns a link on a page into an artifact-relative path.
// Returns "" when the link carries no path component (pure fragment/query).
func resolveTarget(page, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return ""
	}
	p := u.Path
	if strings.HasPrefix(p, "/") {
		return strings.TrimPrefix(path.Clean(p), "/")
	}
	return path.Clean(path.Join(path.Dir(page), p))
}

// targetExists accepts a direct file hit, or a directory served as its
// index.html (the usual static-site pretty-URL layout).
func (v *Verifier) targetExists(target string) bool {
	full := filepath.Join(v.artifactDir, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = os.Stat(filepath.Join(full, "index.html"))
	return err == nil
}

func isHTML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
