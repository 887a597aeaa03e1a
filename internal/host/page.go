// Package host models the page that owns the item table: an HTML file the
// host re-renders on its own schedule, and the augmented copy we publish.
package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Page is a host document read from Source. Every time Source changes on
// disk the document is replaced wholesale, the way a host re-render
// replaces its table.
type Page struct {
	Source string
	Output string

	doc     *html.Node
	modTime time.Time
	size    int64
}

// Open parses source. The augmented document is written to output on Flush;
// an empty output disables Flush.
func Open(source, output string) (*Page, error) {
	if output != "" {
		same, err := samePath(source, output)
		if err != nil {
			return nil, err
		}
		if same {
			return nil, errors.New("output must differ from the host page source")
		}
	}

	p := &Page{Source: source, Output: output}
	if _, err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse wraps an in-memory document, for callers that render without a source file.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

func (p *Page) Document() *html.Node {
	return p.doc
}

// Reload re-parses Source when its modification time or size changed.
func (p *Page) Reload() (bool, error) {
	if p.Source == "" {
		return false, nil
	}
	return p.load()
}

func (p *Page) load() (bool, error) {
	info, err := os.Stat(p.Source)
	if err != nil {
		return false, fmt.Errorf("failed to stat host page: %w", err)
	}
	if p.doc != nil && info.ModTime().Equal(p.modTime) && info.Size() == p.size {
		return false, nil
	}

	data, err := os.ReadFile(p.Source)
	if err != nil {
		return false, fmt.Errorf("failed to read host page: %w", err)
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("failed to parse host page: %w", err)
	}

	p.doc = doc
	p.modTime = info.ModTime()
	p.size = info.Size()
	log.Debug().Str("source", p.Source).Int64("bytes", p.size).Msg("Loaded host page")
	return true, nil
}

// Render writes the current document as HTML.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc)
}

// Flush writes the current document to Output.
func (p *Page) Flush() error {
	if p.Output == "" {
		return nil
	}
	return WriteFile(p.Output, p.doc)
}

// WriteFile renders doc to path through a temporary file and rename, so
// readers never see a partial page.
func WriteFile(path string, doc *html.Node) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".page-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := html.Render(tmp, doc); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to render page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", b, err)
	}
	return absA == absB, nil
}
