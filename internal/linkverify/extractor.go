// Package linkverify checks the built artifact for internal links that point
// at files which do not exist in the artifact tree.
package linkverify

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	pkgerrors "github.com/hypersql/docpub/internal/errors"
)

// Link is one link extracted from an HTML page.
type Link struct {
	URL       string // raw href/src value
	Tag       string // html tag the link came from (a, img, script, link)
	Attribute string // attribute holding the link (href or src)
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CategoryFileSystem, pkgerrors.SeverityError, "failed to open HTML file").
			WithContext("path", htmlPath)
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader extracts all links from an HTML document.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CategoryValidation, pkgerrors.SeverityError, "failed to parse HTML")
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := elementLink(n); ok {
				links = append(links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// elementLink pulls the link-bearing attribute for the tags we care about.
func elementLink(n *html.Node) (Link, bool) {
	var attr string
	switch n.Data {
	case "a", "link":
		attr = "href"
	case "img", "script":
		attr = "src"
	default:
		return Link{}, false
	}
	val := getAttr(n, attr)
	if val == "" {
		return Link{}, false
	}
	return Link{URL: val, Tag: n.Data, Attribute: attr}, true
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// IsInternal reports whether a link targets the same site rather than an
// external host or a non-navigational scheme.
func IsInternal(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "//", "mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(raw, prefix) {
			return false
		}
	}
	return true
}
