package transcript

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// blockSelector lists elements whose text is rendered on its own line.
const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, pre, blockquote, tr"

var nbspToSpace = runes.Map(func(r rune) rune {
	if r == '\u00a0' {
		return ' '
	}
	return r
})

// Load reads a transcript file into trimmed lines. Files ending in .html or
// .htm are treated as saved chat pages; anything else as plain text.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return LoadHTML(f)
	default:
		return LoadText(f)
	}
}

// LoadText splits a plain text export into trimmed lines.
func LoadText(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return splitLines(string(data)), nil
}

// LoadHTML renders a saved chat page as lines: each innermost block element
// becomes a line and <br> starts a new one.
func LoadHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing transcript HTML: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")

	var lines []string
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		lines = append(lines, splitLines(sel.Text())...)
	})
	return lines, nil
}

func splitLines(s string) []string {
	if normalized, _, err := transform.String(nbspToSpace, s); err == nil {
		s = normalized
	} else {
		s = strings.ReplaceAll(s, "\u00a0", " ")
	}
	raw := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
