package site

import "git.home.luguber.info/inful/blogbuilder/internal/post"

// Page is the data context passed to every template.
type Page struct {
	SiteName  string
	SiteURL   string
	Generator string
	Post      *post.Post
	Posts     []post.Post
	Tag       string
}
