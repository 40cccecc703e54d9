// Package lint checks documentation sources before they reach the generator.
// It walks the markdown AST looking for broken relative links between pages
// and duplicate heading anchors within a page.
package lint

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Rule identifies a lint rule.
type Rule string

const (
	RuleBrokenLink      Rule = "broken-link"
	RuleDuplicateAnchor Rule = "duplicate-anchor"
)

// Issue is a single lint finding.
type Issue struct {
	File    string // path relative to the docs root
	Line    int    // 1-based, best effort
	Rule    Rule
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", i.File, i.Line, i.Rule, i.Message)
}

// Report collects lint findings over a docs tree.
type Report struct {
	Files  int
	Issues []Issue
}

// HasIssues reports whether any finding was recorded.
func (r *Report) HasIssues() bool { return len(r.Issues) > 0 }

// Linter lints a documentation source tree.
type Linter struct {
	docsDir string
	md      goldmark.Markdown
}

// NewLinter creates a linter rooted at docsDir.
func NewLinter(docsDir string) *Linter {
	return &Linter{
		docsDir: docsDir,
		md:      goldmark.New(),
	}
}

// Run lints every markdown file under the docs root.
func (l *Linter) Run() (*Report, error) {
	report := &Report{}

	var files []string
	err := filepath.WalkDir(l.docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs tree: %w", err)
	}

	for _, path := range files {
		rel, err := filepath.Rel(l.docsDir, path)
		if err != nil {
			rel = path
		}
		issues, err := l.lintFile(path, rel)
		if err != nil {
			return nil, err
		}
		report.Files++
		report.Issues = append(report.Issues, issues...)
	}

	return report, nil
}

// lintFile parses one markdown file and applies all rules.
func (l *Linter) lintFile(path, rel string) ([]Issue, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}

	doc := l.md.Parser().Parse(text.NewReader(source))

	var issues []Issue
	anchors := map[string]int{}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			slug := AnchorSlug(string(nodeText(node, source)))
			if slug == "" {
				break
			}
			anchors[slug]++
			if anchors[slug] == 2 {
				issues = append(issues, Issue{
					File:    rel,
					Line:    lineOf(node, source),
					Rule:    RuleDuplicateAnchor,
					Message: fmt.Sprintf("heading anchor %q appears more than once", slug),
				})
			}

		case *ast.Link:
			dest := string(node.Destination)
			if issue := l.checkLink(dest, path, rel, lineOf(node, source)); issue != nil {
				issues = append(issues, *issue)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return issues, nil
}

// checkLink validates relative markdown links against the filesystem.
// External URLs and pure fragments are out of scope here.
func (l *Linter) checkLink(dest, path, rel string, line int) *Issue {
	if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") ||
		strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "/") {
		return nil
	}

	target, _, _ := strings.Cut(dest, "#")
	if target == "" || !strings.HasSuffix(strings.ToLower(target), ".md") {
		return nil
	}

	resolved := filepath.Join(filepath.Dir(path), filepath.FromSlash(target))
	if _, err := os.Stat(resolved); err != nil {
		return &Issue{
			File:    rel,
			Line:    line,
			Rule:    RuleBrokenLink,
			Message: fmt.Sprintf("link target %q does not exist", dest),
		}
	}
	return nil
}

// AnchorSlug converts a heading text into its anchor form: NFC-normalized,
// lowercased, punctuation stripped, spaces collapsed to dashes.
func AnchorSlug(heading string) string {
	s := norm.NFC.String(strings.TrimSpace(heading))
	s = strings.ToLower(s)

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
			prevDash = false
		case r == ' ' || r == '-' || r == '_':
			if !prevDash && b.Len() > 0 {
				b.WriteRune('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// nodeText extracts the raw text content of a node's children.
func nodeText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		} else {
			buf.Write(nodeText(c, source))
		}
	}
	return buf.Bytes()
}

// lineOf computes a best-effort 1-based line number for a node.
func lineOf(n ast.Node, source []byte) int {
	var offset int
	switch node := n.(type) {
	case *ast.Heading:
		if node.Lines().Len() > 0 {
			offset = node.Lines().At(0).Start
		}
	default:
		// Walk up to the nearest block with line information.
		for p := n; p != nil; p = p.Parent() {
			if p.Type() == ast.TypeBlock && p.Lines() != nil && p.Lines().Len() > 0 {
				offset = p.Lines().At(0).Start
				break
			}
		}
	}
	return 1 + bytes.Count(source[:min(offset, len(source))], []byte{'\n'})
}
