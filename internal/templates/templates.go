// Package templates loads and executes the page templates.
//
// Each template is looked up in the project's templates directory first and
// falls back to an embedded default. HTML pages use html/template so post
// metadata is escaped; the feed uses text/template with an explicit xml
// escaping helper because html/template's contexts do not fit RSS.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Template names.
const (
	Post  = "post.html"
	Index = "index.html"
	Tag   = "tag.html"
	Feed  = "rss.xml"
)

// Names lists every template a build renders.
var Names = []string{Post, Index, Tag, Feed}

//go:embed defaults/*
var embeddedDefaults embed.FS

// Renderer renders a named template with a data context.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// Source records where a template was loaded from.
type Source struct {
	Origin string `json:"origin"`         // "file" or "embedded"
	Path   string `json:"path,omitempty"` // set for file templates
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// Set is the default Renderer. Templates are parsed on first use and cached.
type Set struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	parsed  map[string]executor
	sources map[string]Source
}

// NewSet creates a Set reading overrides from dir.
func NewSet(dir string) *Set {
	return &Set{
		dir:     dir,
		logger:  slog.Default(),
		parsed:  make(map[string]executor),
		sources: make(map[string]Source),
	}
}

// WithLogger sets a custom logger.
func (s *Set) WithLogger(logger *slog.Logger) *Set {
	s.logger = logger
	return s
}

// File returns the override file for name, or "" when the embedded default is used.
func (s *Set) File(name string) string {
	p := filepath.Join(s.dir, name)
	if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
		return p
	}
	return ""
}

// Sources reports the origin of every template parsed so far.
func (s *Set) Sources() map[string]Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Source, len(s.sources))
	for k, v := range s.sources {
		out[k] = v
	}
	return out
}

// Render implements Renderer.
func (s *Set) Render(name string, data any) ([]byte, error) {
	tpl, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "execute template").Fatal().
			WithContext("template", name).Build()
	}
	return buf.Bytes(), nil
}

func (s *Set) lookup(name string) (executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tpl, ok := s.parsed[name]; ok {
		return tpl, nil
	}

	body, src, err := s.load(name)
	if err != nil {
		return nil, err
	}
	tpl, err := parse(name, body)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "parse template").Fatal().
			WithContext("template", name).WithContext("path", src.Path).Build()
	}
	s.parsed[name] = tpl
	s.sources[name] = src
	s.logger.Debug("Loaded template", logfields.Template(name), slog.String("origin", src.Origin), logfields.Path(src.Path))
	return tpl, nil
}

func (s *Set) load(name string) (string, Source, error) {
	if p := s.File(name); p != "" {
		// #nosec G304 -- p is a fixed template name inside the templates directory.
		b, err := os.ReadFile(p)
		if err != nil {
			return "", Source{}, errors.WrapError(err, errors.CategoryFileSystem, "read template").Fatal().
				WithContext("path", p).Build()
		}
		if strings.TrimSpace(string(b)) != "" {
			return string(b), Source{Origin: "file", Path: p}, nil
		}
	}
	b, err := embeddedDefaults.ReadFile("defaults/" + name)
	if err != nil {
		return "", Source{}, errors.RenderError(fmt.Sprintf("unknown template %q", name)).
			WithContext("template", name).Build()
	}
	return string(b), Source{Origin: "embedded"}, nil
}

// parse picks the engine by extension: .xml templates are plain text.
func parse(name, body string) (executor, error) {
	if strings.HasSuffix(name, ".xml") {
		return texttemplate.New(name).Funcs(texttemplate.FuncMap(textFuncs())).Option("missingkey=error").Parse(body)
	}
	return htmltemplate.New(name).Funcs(htmltemplate.FuncMap(htmlFuncs())).Option("missingkey=error").Parse(body)
}

// DefaultStyles returns the embedded stylesheet, if any.
func DefaultStyles() ([]byte, bool) {
	b, err := embeddedDefaults.ReadFile("defaults/styles.css")
	return b, err == nil
}
