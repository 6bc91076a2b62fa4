// Package markdown converts post bodies to HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns a Markdown body into an HTML fragment.
type Renderer interface {
	Render(body []byte) (string, error)
}

// Goldmark is the default Renderer: CommonMark plus GitHub Flavored Markdown.
// Raw HTML in post bodies is passed through, matching what authors expect from
// hand-written posts.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark creates a GFM-enabled renderer.
func NewGoldmark() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render implements Renderer. Surrounding whitespace of the body is trimmed first.
func (g *Goldmark) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(bytes.TrimSpace(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(body []byte) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(body []byte) (string, error) { return f(body) }
