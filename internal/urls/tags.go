package urls

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// TagFile returns the output file name of a tag listing page, tag-{name}.html.
//
// The tag is NFC-normalized and every rune other than a letter, digit, '-',
// '_' or '.' is replaced by '-'. Tags that are already safe keep their exact
// spelling. A name that would be empty, "." or ".." is rejected.
func TagFile(tag string) (string, error) {
	name := SanitizeTag(tag)
	if name == "" || name == "." || name == ".." {
		return "", errors.ValidationError("tag cannot be used as a file name").
			WithContext("tag", tag).Build()
	}
	return "tag-" + name + ".html", nil
}

// SanitizeTag applies the file name mapping used by TagFile without validating the result.
func SanitizeTag(tag string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, norm.NFC.String(tag))
}

// TagPath returns the site-relative path of a tag page.
func TagPath(tag string) (string, error) {
	file, err := TagFile(tag)
	if err != nil {
		return "", err
	}
	return "/" + file, nil
}
