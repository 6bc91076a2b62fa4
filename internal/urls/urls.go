// Package urls derives canonical post locations from a slug and the site
// configuration. It performs no I/O.
package urls

import (
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// Location is where a post lives on the site.
type Location struct {
	Path string // site-relative, always starts with "/"
	URL  string // absolute when the site has a base URL, otherwise equal to Path
}

// Resolve maps a slug to its location.
func Resolve(slug string, site config.Site) Location {
	rel := slug + ".html"
	if site.PostsSubdir != "" {
		rel = site.PostsSubdir + "/" + rel
	}
	path := "/" + rel
	return Location{Path: path, URL: Absolute(path, site)}
}

// Absolute joins a site-relative path onto the configured base URL.
func Absolute(path string, site config.Site) string {
	base := strings.TrimRight(site.URL, "/")
	if base == "" {
		return path
	}
	return base + path
}
