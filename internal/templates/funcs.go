package templates

import (
	"encoding/xml"
	htmltemplate "html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/urls"
)

func commonFuncs() map[string]any {
	return map[string]any{
		"tagURL": urls.TagPath,
		"rfc822": RFC822,
	}
}

func htmlFuncs() map[string]any {
	funcs := commonFuncs()
	funcs["safeHTML"] = func(s string) htmltemplate.HTML {
		// #nosec G203 -- post bodies are rendered by the Markdown renderer from trusted local sources.
		return htmltemplate.HTML(s)
	}
	return funcs
}

func textFuncs() map[string]any {
	funcs := commonFuncs()
	funcs["xml"] = XMLEscape
	return funcs
}

// RFC822 formats t the way RSS 2.0 pubDate expects.
func RFC822(t time.Time) string {
	return t.Format(time.RFC1123Z)
}

// XMLEscape escapes s for use as XML character data.
func XMLEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
