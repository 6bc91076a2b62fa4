package post

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the accepted textual post date format.
const DateLayout = "2006-01-02"

// Front matter keys with special meaning.
const (
	FieldTitle = "title"
	FieldDate  = "date"
	FieldTags  = "tags"
	FieldImg   = "img"
)

// parseDate resolves the date field. A missing or empty value yields today.
func parseDate(v any, today time.Time) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return today, nil
	case time.Time:
		return truncateToDate(d), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return today, nil
		}
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: got %q", ErrDateFormat, d)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: got %v", ErrDateFormat, d)
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// stringList normalizes a string or a sequence of strings into a slice.
func stringList(field string, v any) ([]string, error) {
	switch l := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		return []string{l}, nil
	case []string:
		return append([]string{}, l...), nil
	case []any:
		out := make([]string, 0, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T, want string", ErrFieldType, field, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want string or list of strings", ErrFieldType, field, v)
	}
}

var titleCaser = cases.Title(language.Und)

// resolveTitle uses the title field when present, falling back to a
// title-cased slug ("my_first-post" becomes "My First Post").
func resolveTitle(v any, slug string) string {
	switch t := v.(type) {
	case nil:
	case string:
		if strings.TrimSpace(t) != "" {
			return t
		}
	default:
		return fmt.Sprint(t)
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return titleCaser.String(strings.Join(strings.Fields(words), " "))
}
