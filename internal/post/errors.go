package post

import "errors"

var (
	// ErrDateFormat is wrapped by load errors for dates that are not YYYY-MM-DD.
	ErrDateFormat = errors.New("post date must be formatted as YYYY-MM-DD")
	// ErrSlugCollision is wrapped by load errors for two sources sharing one slug.
	ErrSlugCollision = errors.New("two post sources map to the same slug")
	// ErrFieldType is wrapped by load errors for front matter values of the wrong type.
	ErrFieldType = errors.New("unexpected front matter value type")
)
