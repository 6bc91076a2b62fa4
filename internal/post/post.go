// Package post loads blog post sources into immutable Post values.
//
// Loading is two-stage: a raw front matter mapping is decoded first, then
// normalized into a Post whose Tags and Images are always slices and whose
// Date is always set. Nothing downstream sees the raw mapping except through
// Fields, which templates may read.
package post

import (
	"maps"
	"time"
)

// Post is one rendered blog post.
type Post struct {
	Slug        string
	Title       string
	Fields      map[string]any
	Date        time.Time
	Tags        []string
	Images      []string
	BodyHTML    string
	Summary     string
	Fingerprint string
	URL         string
	FullURL     string
	SourcePath  string
}

// DateString formats the post date as YYYY-MM-DD.
func (p Post) DateString() string {
	return p.Date.Format(DateLayout)
}

// Field returns a raw front matter value.
func (p Post) Field(key string) any {
	return p.Fields[key]
}

func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return maps.Clone(fields)
}
