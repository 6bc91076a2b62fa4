package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Defaults used when the configuration file omits a value.
const (
	DefaultSiteName      = "My Site"
	DefaultPostsSubdir   = "posts"
	DefaultThumbnailSize = 200
	DefaultFeedLimit     = 10
	DefaultWorkers       = 1
)

// Default returns the configuration used for a project at root with no config file.
func Default(root string) *Config {
	var raw fileConfig
	return fromFile(&raw, root)
}

func fromFile(raw *fileConfig, root string) *Config {
	cfg := &Config{
		Site: Site{
			Name:        raw.SiteName,
			URL:         strings.TrimRight(strings.TrimSpace(raw.SiteURL), "/"),
			PostsSubdir: DefaultPostsSubdir,
		},
		ThumbnailSize: raw.ThumbnailSize,
		Feed:          raw.Feed,
		Output:        OutputConfig{Clean: true},
		Build:         raw.Build,
		Report:        raw.Report,
		Metrics:       raw.Metrics,
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = DefaultSiteName
	}
	// An explicit empty posts_subdir means root-level post URLs.
	if raw.PostsSubdir != nil {
		cfg.Site.PostsSubdir = strings.Trim(strings.TrimSpace(*raw.PostsSubdir), "/")
	}
	if raw.Output.Clean != nil {
		cfg.Output.Clean = *raw.Output.Clean
	}
	if cfg.ThumbnailSize == 0 {
		cfg.ThumbnailSize = DefaultThumbnailSize
	}
	if cfg.Feed.Limit == 0 {
		cfg.Feed.Limit = DefaultFeedLimit
	}
	if cfg.Build.Workers == 0 {
		cfg.Build.Workers = DefaultWorkers
	}

	resolve := func(p, def string) string {
		if p == "" {
			p = def
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}
	cfg.Paths = Paths{
		Root:      root,
		Data:      resolve(raw.Paths.Data, "data"),
		Images:    resolve(raw.Paths.Images, "img"),
		Templates: resolve(raw.Paths.Templates, "templates"),
		Static:    resolve(raw.Paths.Static, "static"),
		Output:    resolve(raw.Paths.Output, "out"),
	}
	if cfg.Report.Path != "" {
		cfg.Report.Path = resolve(cfg.Report.Path, "")
	}
	if cfg.Metrics.Textfile != "" {
		cfg.Metrics.Textfile = resolve(cfg.Metrics.Textfile, "")
	}
	return cfg
}

// Validate checks value ranges and path sanity.
func (c *Config) Validate() error {
	switch {
	case c.ThumbnailSize < 0:
		return errors.ValidationError("thumbnail_size must be positive").WithContext("field", "thumbnail_size").Build()
	case c.Feed.Limit < 0:
		return errors.ValidationError("feed.limit must be positive").WithContext("field", "feed.limit").Build()
	case c.Build.Workers < 0:
		return errors.ValidationError("build.workers must be positive").WithContext("field", "build.workers").Build()
	}
	if sub := c.Site.PostsSubdir; sub != "" {
		for _, part := range strings.Split(sub, "/") {
			if part == "" || part == "." || part == ".." {
				return errors.ValidationError("posts_subdir must be a plain relative directory").
					WithContext("field", "posts_subdir").WithContext("value", sub).Build()
			}
		}
	}
	return c.Paths.validateOutput()
}

// validateOutput rejects an output directory that equals or contains the
// project root or a source directory, since cleaning it would delete sources.
func (p Paths) validateOutput() error {
	sources := []struct{ field, path string }{
		{"root", p.Root},
		{"paths.data", p.Data},
		{"paths.images", p.Images},
		{"paths.templates", p.Templates},
		{"paths.static", p.Static},
	}
	for _, src := range sources {
		if contains(p.Output, src.path) {
			return errors.ValidationError("output directory must not contain project sources").
				WithContext("field", "paths.output").WithContext("output", p.Output).
				WithContext("conflicts_with", src.field).Build()
		}
	}
	return nil
}

// contains reports whether dir equals path or is one of its ancestors.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
