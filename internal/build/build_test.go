package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	itesting "git.home.luguber.info/inful/blogbuilder/internal/testing"
)

var buildNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeMaker struct{ calls atomic.Int32 }

func (m *fakeMaker) Make(_, dst string, _ int) error {
	m.calls.Add(1)
	return os.WriteFile(dst, []byte("thumb"), 0o600)
}

func newProject(t *testing.T) *itesting.Project {
	t.Helper()
	return itesting.NewProject(t).
		WithPost("a.md", "---\ntitle: Post A\ndate: 2024-01-01\ntags: [x]\nimg: a.png\n---\nHello from A.\n").
		WithPost("b.md", "---\ntitle: Post B\ndate: 2024-02-01\ntags: [x, y]\n---\nHello from B.\n").
		WithImage("a.png").
		WithStatic("robots.txt", "User-agent: *\n")
}

func loadConfig(t *testing.T, p *itesting.Project) *config.Config {
	t.Helper()
	cfg, err := config.Load(p.ConfigPath())
	require.NoError(t, err)
	return cfg
}

func run(t *testing.T, cfg *config.Config, maker *fakeMaker) (*BuildReport, error) {
	t.Helper()
	return New(cfg).WithMaker(maker).WithClock(func() time.Time { return buildNow }).Run(context.Background())
}

func assertOrder(t *testing.T, body string, parts ...string) {
	t.Helper()
	last := -1
	for _, p := range parts {
		idx := strings.Index(body, p)
		require.GreaterOrEqual(t, idx, 0, "missing %q", p)
		assert.Greater(t, idx, last, "%q out of order", p)
		last = idx
	}
}

func TestRun_EndToEnd(t *testing.T) {
	p := newProject(t).WithConfig("site_name: Test Blog\nsite_url: https://x.test/\n")
	cfg := loadConfig(t, p)
	maker := &fakeMaker{}

	report, err := run(t, cfg, maker)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Equal(t, 2, report.Posts)
	assert.Equal(t, 2, report.TagPages)
	assert.Equal(t, ThumbnailCounts{Generated: 1}, report.Thumbnails)
	assert.Len(t, report.Fingerprints, 2)
	assert.NotEmpty(t, report.BuildID)
	for _, st := range defaultStages() {
		assert.Contains(t, report.StageDurations, st.Name)
	}

	out := itesting.NewFileAssertions(t, cfg.Paths.Output)
	out.AssertFileExists("posts/a.html").
		AssertFileExists("posts/b.html").
		AssertFileExists("index.html").
		AssertFileExists("tag-x.html").
		AssertFileExists("tag-y.html").
		AssertFileExists("rss.xml").
		AssertFileExists("styles.css").
		AssertFileExists("robots.txt").
		AssertFileExists("img/a.png").
		AssertFileExists("thumbs/a.png").
		AssertFileContains("posts/a.html", "<p>Hello from A.</p>").
		AssertFileContains("tag-y.html", "/posts/b.html").
		AssertFileNotContains("tag-y.html", "/posts/a.html")

	assertOrder(t, out.Read("index.html"), "/posts/b.html", "/posts/a.html")
	assertOrder(t, out.Read("tag-x.html"), "/posts/b.html", "/posts/a.html")
	assertOrder(t, out.Read("rss.xml"), "https://x.test/posts/b.html", "https://x.test/posts/a.html")
}

func TestRun_Idempotent(t *testing.T) {
	p := newProject(t)
	cfg := loadConfig(t, p)
	maker := &fakeMaker{}

	_, err := run(t, cfg, maker)
	require.NoError(t, err)
	out := itesting.NewFileAssertions(t, cfg.Paths.Output)
	first := map[string]string{}
	for _, f := range []string{"posts/a.html", "posts/b.html", "index.html", "tag-x.html", "rss.xml"} {
		first[f] = out.Read(f)
	}

	report, err := run(t, cfg, maker)
	require.NoError(t, err)
	for f, body := range first {
		assert.Equal(t, body, out.Read(f), f)
	}
	assert.Equal(t, int32(1), maker.calls.Load(), "thumbnail cache survives cleaning")
	assert.Equal(t, ThumbnailCounts{Cached: 1}, report.Thumbnails)
}

func TestRun_CleanRemovesStaleOutputButKeepsThumbs(t *testing.T) {
	p := newProject(t)
	cfg := loadConfig(t, p)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Paths.Output, "thumbs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.Output, "old.html"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.Output, "thumbs", "keep.png"), []byte("x"), 0o600))

	_, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)
	itesting.NewFileAssertions(t, cfg.Paths.Output).
		AssertFileNotExists("old.html").
		AssertFileExists("thumbs/keep.png")
}

func TestRun_NoCleanSkipsFreshPostPages(t *testing.T) {
	p := newProject(t).WithConfig("output:\n  clean: false\n")
	cfg := loadConfig(t, p)
	require.False(t, cfg.Output.Clean)
	p.Backdate(time.Hour)

	first, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)
	assert.Equal(t, 0, first.PagesSkipped)

	second, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.PagesSkipped)
	assert.Equal(t, first.PagesWritten-2, second.PagesWritten)
}

func TestRun_MissingImageIsWarning(t *testing.T) {
	p := newProject(t).WithPost("c.md", "---\ndate: 2024-03-01\nimg: [gone.png]\n---\nC\n")
	cfg := loadConfig(t, p)

	report, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	assert.Equal(t, 1, report.Thumbnails.Failed)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueMissingImage, report.Issues[0].Code)
	assert.Equal(t, "gone.png", report.Issues[0].Image)
	itesting.NewFileAssertions(t, cfg.Paths.Output).AssertFileExists("posts/c.html")
}

func TestRun_SourceErrorFailsBuild(t *testing.T) {
	p := newProject(t).WithPost("bad.md", "---\ndate: 01/02/2024\n---\nbody")
	cfg := loadConfig(t, p)

	report, err := run(t, cfg, &fakeMaker{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategorySource))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, StageLoadPosts, report.Issues[0].Stage)
	assert.Equal(t, IssueSourceParse, report.Issues[0].Code)
	assert.NotContains(t, report.StageDurations, StageThumbnails)
	itesting.NewFileAssertions(t, cfg.Paths.Output).AssertFileNotExists("index.html")
}

func TestRun_TagCollisionFailsBuild(t *testing.T) {
	p := newProject(t).
		WithPost("c.md", "---\ntags: [c++]\n---\nC").
		WithPost("d.md", "---\ntags: [c--]\n---\nD")
	cfg := loadConfig(t, p)

	report, err := run(t, cfg, &fakeMaker{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConflict))
	assert.Equal(t, StagePlanOutputs, report.Issues[len(report.Issues)-1].Stage)
	assert.NoFileExists(t, filepath.Join(cfg.Paths.Output, "posts", "a.html"))
}

func TestRun_PostShadowingGeneratedPageFailsBuild(t *testing.T) {
	p := itesting.NewProject(t).
		WithConfig("posts_subdir: \"\"\n").
		WithPost("index.md", "---\ntitle: About\n---\nAbout this blog.\n").
		WithPost("z.md", "---\ntags: [x]\n---\nZ\n")
	cfg := loadConfig(t, p)

	report, err := run(t, cfg, &fakeMaker{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConflict))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.Equal(t, IssueConflict, report.Issues[len(report.Issues)-1].Code)
	assert.NoFileExists(t, filepath.Join(cfg.Paths.Output, "index.html"))
}

func TestRun_Canceled(t *testing.T) {
	cfg := loadConfig(t, newProject(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg).WithMaker(&fakeMaker{}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryCanceled))
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Empty(t, report.StageDurations)
}

func TestRun_PersistsReportAndMetrics(t *testing.T) {
	p := newProject(t).WithConfig("report:\n  path: out/build-report.json\nmetrics:\n  textfile: metrics/blogbuilder.prom\n")
	cfg := loadConfig(t, p)

	report, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)

	b, err := os.ReadFile(cfg.Report.Path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, report.BuildID, decoded["build_id"])
	assert.Equal(t, "success", decoded["outcome"])
	assert.Contains(t, decoded, "stage_durations_ms")

	m, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(m), `blogbuilder_build_outcomes_total{outcome="success"} 1`)
	assert.Contains(t, string(m), "blogbuilder_posts 2")
}

func TestRun_ProjectStylesheetWins(t *testing.T) {
	p := newProject(t).WithTemplate("styles.css", "body{}")
	cfg := loadConfig(t, p)

	_, err := run(t, cfg, &fakeMaker{})
	require.NoError(t, err)
	assert.Equal(t, "body{}", itesting.NewFileAssertions(t, cfg.Paths.Output).Read("styles.css"))
}
