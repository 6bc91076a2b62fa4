package site

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
)

// OutputPlan maps every page a build writes, relative to the output root, to
// the post or view that owns it.
type OutputPlan map[string]string

// PlanOutputs resolves the file of every post page, the index, the feed and
// each tag page. Two owners of one file is a conflict, reported before
// anything is written.
func PlanOutputs(posts []post.Post) (OutputPlan, error) {
	plan := OutputPlan{
		IndexFile: "index",
		FeedFile:  "feed",
	}
	claim := func(file, owner string) error {
		if other, ok := plan[file]; ok {
			return errors.ConflictError("pages map to the same output file").
				WithContext("output", file).WithContext("owner", owner).
				WithContext("other", other).Build()
		}
		plan[file] = owner
		return nil
	}

	for _, p := range posts {
		file := path.Clean(strings.TrimPrefix(p.URL, "/"))
		if err := claim(file, "post "+p.Slug); err != nil {
			return nil, err
		}
	}

	groups, err := TagGroups(posts)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := claim(g.File, "tag "+g.Tag); err != nil {
			return nil, err
		}
	}
	return plan, nil
}
