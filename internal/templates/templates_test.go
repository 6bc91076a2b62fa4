package templates

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

type fakePost struct {
	Title, URL, FullURL, Summary, BodyHTML string
	Date                                   time.Time
	Tags, Images                           []string
}

func (p fakePost) DateString() string { return p.Date.Format("2006-01-02") }

func TestSet_EmbeddedDefaults(t *testing.T) {
	s := NewSet(t.TempDir())
	data := map[string]any{
		"SiteName":  "My <Site>",
		"SiteURL":   "https://x.test",
		"Generator": "blogbuilder test",
		"Tag":       "x",
		"Post": fakePost{
			Title: "Hello & bye", URL: "/posts/a.html", BodyHTML: "<p>raw <em>html</em></p>",
			Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"x"}, Images: []string{"a.png"},
		},
		"Posts": []fakePost{{
			Title: "A & B", URL: "/posts/a.html", FullURL: "https://x.test/posts/a.html",
			Summary: "1 < 2", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	out, err := s.Render(Post, data)
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "Hello &amp; bye")
	assert.Contains(t, html, "<p>raw <em>html</em></p>")
	assert.Contains(t, html, `href="/tag-x.html"`)
	assert.Contains(t, html, `src="/thumbs/a.png"`)
	assert.Contains(t, html, "My &lt;Site&gt;")

	out, err = s.Render(Index, data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<a href="/posts/a.html">A &amp; B</a>`)

	out, err = s.Render(Tag, data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Posts tagged x")

	out, err = s.Render(Feed, data)
	require.NoError(t, err)
	feed := string(out)
	assert.Contains(t, feed, "<title>A &amp; B</title>")
	assert.Contains(t, feed, "<link>https://x.test/posts/a.html</link>")
	assert.Contains(t, feed, "<pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>")
	assert.Contains(t, feed, "<description>1 &lt; 2</description>")

	for _, name := range Names {
		assert.Equal(t, "embedded", s.Sources()[name].Origin, name)
		assert.Empty(t, s.File(name))
	}
}

func TestSet_FileOverride(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, Index)
	require.NoError(t, os.WriteFile(p, []byte(`custom {{ .SiteName }}`), 0o600))

	s := NewSet(dir)
	out, err := s.Render(Index, map[string]any{"SiteName": "S"})
	require.NoError(t, err)
	assert.Equal(t, "custom S", string(out))
	assert.Equal(t, p, s.File(Index))
	assert.Equal(t, Source{Origin: "file", Path: p}, s.Sources()[Index])
}

func TestSet_BlankOverrideFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Tag), []byte("  \n"), 0o600))

	s := NewSet(dir)
	_, err := s.Render(Tag, map[string]any{"SiteName": "S", "Generator": "g", "Tag": "x", "Posts": nil})
	require.NoError(t, err)
	assert.Equal(t, "embedded", s.Sources()[Tag].Origin)
}

func TestSet_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Post), []byte(`{{ .Broken`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Index), []byte(`{{ .Missing.Field }}`), 0o600))
	s := NewSet(dir)

	_, err := s.Render(Post, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))

	_, err = s.Render(Index, struct{}{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryRender))

	_, err = s.Render("nope.html", nil)
	require.Error(t, err)
}

func TestDefaultStyles(t *testing.T) {
	b, ok := DefaultStyles()
	require.True(t, ok)
	assert.NotEmpty(t, b)
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "a &amp; &lt;b&gt;", XMLEscape("a & <b>"))
}
