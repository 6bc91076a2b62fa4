package post

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/urls"
)

// SummaryMaxRunes caps the plain-text summary length.
const SummaryMaxRunes = 280

// Extensions lists the recognized post source extensions.
var Extensions = []string{".md", ".markdown"}

// Loader reads post sources from a single directory.
type Loader struct {
	dir      string
	site     config.Site
	renderer markdown.Renderer
	now      func() time.Time
	logger   *slog.Logger
}

// NewLoader creates a Loader for the posts directory dir.
func NewLoader(dir string, site config.Site) *Loader {
	return &Loader{
		dir:      dir,
		site:     site,
		renderer: markdown.NewGoldmark(),
		now:      time.Now,
		logger:   slog.Default(),
	}
}

// WithRenderer sets the Markdown renderer.
func (l *Loader) WithRenderer(r markdown.Renderer) *Loader {
	l.renderer = r
	return l
}

// WithClock sets the clock used for the default post date.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// WithLogger sets a custom logger.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

type source struct {
	slug string
	path string
}

// Load parses every post in the directory and returns them sorted by slug.
// A missing directory yields no posts. The first failing post aborts loading.
func (l *Loader) Load(ctx context.Context) ([]Post, error) {
	sources, err := l.discover()
	if err != nil {
		return nil, err
	}

	today := truncateToDate(l.now())
	posts := make([]Post, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapError(err, errors.CategoryCanceled, "post loading canceled").Build()
		}
		p, err := l.loadFile(src, today)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded post", logfields.Post(p.Slug), logfields.Path(p.SourcePath))
		posts = append(posts, p)
	}
	return posts, nil
}

// discover lists post sources sorted by slug and rejects slug collisions.
func (l *Loader) discover() ([]source, error) {
	entries, err := os.ReadDir(l.dir)
	if os.IsNotExist(err) {
		l.logger.Warn("Posts directory does not exist", logfields.Path(l.dir))
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read posts directory").
			Fatal().WithContext("path", l.dir).Build()
	}

	var sources []source
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !isPostExt(ext) {
			continue
		}
		slug := strings.TrimSuffix(name, ext)
		if slug == "" {
			continue
		}
		sources = append(sources, source{slug: slug, path: filepath.Join(l.dir, name)})
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].slug != sources[j].slug {
			return sources[i].slug < sources[j].slug
		}
		return sources[i].path < sources[j].path
	})
	for i := 1; i < len(sources); i++ {
		if sources[i].slug == sources[i-1].slug {
			return nil, errors.WrapError(ErrSlugCollision, errors.CategoryConflict, "duplicate post slug").
				Fatal().
				WithContext("slug", sources[i].slug).
				WithContext("path", sources[i-1].path).
				WithContext("other", sources[i].path).
				Build()
		}
	}
	return sources, nil
}

func isPostExt(ext string) bool {
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (l *Loader) loadFile(src source, today time.Time) (Post, error) {
	// #nosec G304 -- paths come from listing the configured posts directory.
	content, err := os.ReadFile(src.path)
	if err != nil {
		return Post{}, errors.WrapError(err, errors.CategoryFileSystem, "read post source").
			Fatal().WithContext("path", src.path).Build()
	}
	return l.Parse(src.slug, src.path, content, today)
}

// Parse builds a Post from raw source content.
func (l *Loader) Parse(slug, sourcePath string, content []byte, today time.Time) (Post, error) {
	sourceErr := func(err error, msg string) error {
		return errors.SourceError(msg).WithCause(err).WithContext("path", sourcePath).Build()
	}

	front, body, _, err := frontmatter.Split(content)
	if err != nil {
		return Post{}, sourceErr(err, "invalid front matter")
	}
	fields, err := frontmatter.ParseYAML(front)
	if err != nil {
		return Post{}, sourceErr(err, "invalid front matter")
	}

	date, err := parseDate(fields[FieldDate], today)
	if err != nil {
		return Post{}, errors.SourceError("invalid post date").WithCause(err).
			WithContext("path", sourcePath).WithContext("reason", "date_format").Build()
	}
	tags, err := stringList(FieldTags, fields[FieldTags])
	if err != nil {
		return Post{}, sourceErr(err, "invalid tags")
	}
	images, err := stringList(FieldImg, fields[FieldImg])
	if err != nil {
		return Post{}, sourceErr(err, "invalid img")
	}

	bodyHTML, err := l.renderer.Render(body)
	if err != nil {
		return Post{}, errors.WrapError(err, errors.CategoryRender, "render markdown").Fatal().
			WithContext("path", sourcePath).Build()
	}

	loc := urls.Resolve(slug, l.site)
	return Post{
		Slug:        slug,
		Title:       resolveTitle(fields[FieldTitle], slug),
		Fields:      copyFields(fields),
		Date:        date,
		Tags:        tags,
		Images:      images,
		BodyHTML:    bodyHTML,
		Summary:     markdown.Excerpt(bodyHTML, SummaryMaxRunes),
		Fingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimSpace(string(front)), string(body)),
		URL:         loc.Path,
		FullURL:     loc.URL,
		SourcePath:  sourcePath,
	}, nil
}
