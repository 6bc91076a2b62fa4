package site

import (
	"slices"

	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/util/sets"
)

// NewestFirst returns a copy of posts ordered by date descending. Posts with
// the same date keep their relative input order.
func NewestFirst(posts []post.Post) []post.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b post.Post) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// TagGroup is one tag with the posts carrying it, newest first.
type TagGroup struct {
	Tag   string
	File  string
	Posts []post.Post
}

// groupByTag collects posts per distinct tag, newest first. A post listing the
// same tag twice appears once in that group.
func groupByTag(posts []post.Post) map[string][]post.Post {
	groups := make(map[string][]post.Post)
	for _, p := range NewestFirst(posts) {
		seen := sets.New[string]()
		for _, tag := range p.Tags {
			if seen.Add(tag) {
				groups[tag] = append(groups[tag], p)
			}
		}
	}
	return groups
}
