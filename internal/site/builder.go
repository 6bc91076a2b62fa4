package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/staleness"
	"git.home.luguber.info/inful/blogbuilder/internal/templates"
	"git.home.luguber.info/inful/blogbuilder/internal/urls"
)

// Output file names of the aggregate pages.
const (
	IndexFile = "index.html"
	FeedFile  = "rss.xml"
)

// TemplateLocator is implemented by renderers that load templates from files.
// The file becomes a staleness input of the pages rendered from it.
type TemplateLocator interface {
	File(name string) string
}

// Builder writes pages under the output root.
type Builder struct {
	outDir    string
	site      config.Site
	feedLimit int
	generator string
	renderer  templates.Renderer
	oracle    *staleness.Oracle
	logger    *slog.Logger
}

// NewBuilder creates a Builder for cfg rendering through renderer.
func NewBuilder(cfg *config.Config, renderer templates.Renderer, generator string) *Builder {
	return &Builder{
		outDir:    cfg.Paths.Output,
		site:      cfg.Site,
		feedLimit: cfg.Feed.Limit,
		generator: generator,
		renderer:  renderer,
		oracle:    staleness.New(),
		logger:    slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	b.oracle.WithLogger(logger)
	return b
}

// PostPagesResult counts post page outcomes.
type PostPagesResult struct {
	Written int
	Skipped int
}

func (b *Builder) page() Page {
	return Page{SiteName: b.site.Name, SiteURL: b.site.URL, Generator: b.generator}
}

// BuildPostPages renders every stale post page.
func (b *Builder) BuildPostPages(ctx context.Context, posts []post.Post) (PostPagesResult, error) {
	var res PostPagesResult
	tmpl := b.templateFile(templates.Post)

	for i := range posts {
		if err := ctx.Err(); err != nil {
			return res, canceled(err)
		}
		p := &posts[i]
		out := b.outputPath(p.URL)

		inputs := []string{p.SourcePath}
		if tmpl != "" {
			inputs = append(inputs, tmpl)
		}
		if !b.oracle.IsStale(out, inputs...) {
			b.logger.Debug("Post page is fresh", logfields.Post(p.Slug), logfields.Output(out))
			res.Skipped++
			continue
		}

		data := b.page()
		data.Post = p
		if err := b.render(templates.Post, data, out); err != nil {
			return res, err
		}
		res.Written++
	}
	return res, nil
}

// BuildIndex renders the index page listing every post newest first.
func (b *Builder) BuildIndex(posts []post.Post) error {
	data := b.page()
	data.Posts = NewestFirst(posts)
	return b.render(templates.Index, data, filepath.Join(b.outDir, IndexFile))
}

// TagGroups resolves the tag pages to build, sorted by tag. It fails, before
// anything is written, on a tag that cannot be a file name or on two tags
// that map to the same file.
func TagGroups(posts []post.Post) ([]TagGroup, error) {
	groups := groupByTag(posts)
	tags := make([]string, 0, len(groups))
	for tag := range groups {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	owners := make(map[string]string, len(tags))
	out := make([]TagGroup, 0, len(tags))
	for _, tag := range tags {
		file, err := urls.TagFile(tag)
		if err != nil {
			return nil, err
		}
		if other, ok := owners[file]; ok {
			return nil, errors.ConflictError("tags map to the same page").
				WithContext("tag", tag).WithContext("other", other).WithContext("output", file).Build()
		}
		owners[file] = tag
		out = append(out, TagGroup{Tag: tag, File: file, Posts: groups[tag]})
	}
	return out, nil
}

// BuildTagPages renders one page per distinct tag and returns how many were written.
func (b *Builder) BuildTagPages(ctx context.Context, posts []post.Post) (int, error) {
	groups, err := TagGroups(posts)
	if err != nil {
		return 0, err
	}
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return i, canceled(err)
		}
		data := b.page()
		data.Tag = g.Tag
		data.Posts = g.Posts
		if err := b.render(templates.Tag, data, filepath.Join(b.outDir, g.File)); err != nil {
			return i, err
		}
		b.logger.Debug("Wrote tag page", logfields.Tag(g.Tag), logfields.Count(len(g.Posts)))
	}
	return len(groups), nil
}

// FeedPosts returns the newest limit posts.
func FeedPosts(posts []post.Post, limit int) []post.Post {
	sorted := NewestFirst(posts)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BuildFeed renders the RSS feed of the most recent posts.
func (b *Builder) BuildFeed(posts []post.Post) error {
	data := b.page()
	data.Posts = FeedPosts(posts, b.feedLimit)
	return b.render(templates.Feed, data, filepath.Join(b.outDir, FeedFile))
}

func (b *Builder) templateFile(name string) string {
	if loc, ok := b.renderer.(TemplateLocator); ok {
		return loc.File(name)
	}
	return ""
}

func (b *Builder) outputPath(sitePath string) string {
	return filepath.Join(b.outDir, filepath.FromSlash(strings.TrimPrefix(sitePath, "/")))
}

func (b *Builder) render(name string, data Page, out string) error {
	body, err := b.renderer.Render(name, data)
	if err != nil {
		if errors.IsClassified(err) {
			return err
		}
		return errors.WrapError(err, errors.CategoryRender, "render page").Fatal().
			WithContext("template", name).WithContext("output", out).Build()
	}
	return writeFile(out, body)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").Fatal().
			WithContext("path", filepath.Dir(path)).Build()
	}
	// #nosec G306 -- generated pages are public web content.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output file").Fatal().
			WithContext("path", path).Build()
	}
	return nil
}

func canceled(err error) error {
	return errors.WrapError(err, errors.CategoryCanceled, "page rendering canceled").Build()
}
