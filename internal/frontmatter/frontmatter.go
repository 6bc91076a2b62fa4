// Package frontmatter splits post sources into a YAML metadata block and a
// Markdown body.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front matter block.
const Delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a second one.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Split separates front matter from the body using the first two occurrences
// of the delimiter. Everything between them is the metadata block, everything
// after the second is the body.
//
// If the document does not start with the delimiter, had is false and body is
// the full input.
func Split(content []byte) (front []byte, body []byte, had bool, err error) {
	delim := []byte(Delimiter)
	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, nil
	}

	rest := content[len(delim):]
	idx := bytes.Index(rest, delim)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx], rest[idx+len(delim):], true, nil
}

// ParseYAML parses a raw metadata block (without delimiters) into a map.
// A blank block yields an empty map; a block whose top level is not a
// mapping is an error.
func ParseYAML(front []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(front)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(front, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
