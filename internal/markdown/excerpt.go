package markdown

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Excerpt returns the plain text of the first non-empty paragraph of an HTML
// fragment, collapsed to single spaces and cut at maxRunes (0 = no limit) on
// a word boundary with a trailing ellipsis.
func Excerpt(fragment string, maxRunes int) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var (
		inPara bool
		text   strings.Builder
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return truncate(collapse(text.String()), maxRunes)
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				inPara = true
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" && inPara {
				if s := collapse(text.String()); s != "" {
					return truncate(s, maxRunes)
				}
				inPara = false
				text.Reset()
			}
		case html.TextToken:
			if inPara {
				text.Write(z.Text())
			}
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)[:maxRunes]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
