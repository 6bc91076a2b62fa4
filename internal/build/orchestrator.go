package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/post"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"git.home.luguber.info/inful/blogbuilder/internal/staleness"
	"git.home.luguber.info/inful/blogbuilder/internal/templates"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbs"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// Orchestrator runs full builds for one configuration.
type Orchestrator struct {
	cfg       *config.Config
	markdown  markdown.Renderer
	templates templates.Renderer
	maker     thumbs.Maker
	recorder  metrics.Recorder
	now       func() time.Time
	logger    *slog.Logger
}

// New creates an Orchestrator using the default goldmark renderer, the
// templates directory with embedded fallbacks and the image thumbnail maker.
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		markdown: markdown.NewGoldmark(),
		maker:    thumbs.ImageMaker{},
		now:      time.Now,
		logger:   slog.Default(),
	}
}

// WithMarkdown sets the Markdown renderer.
func (o *Orchestrator) WithMarkdown(r markdown.Renderer) *Orchestrator {
	o.markdown = r
	return o
}

// WithTemplates sets the page template renderer.
func (o *Orchestrator) WithTemplates(r templates.Renderer) *Orchestrator {
	o.templates = r
	return o
}

// WithMaker sets the thumbnail generator.
func (o *Orchestrator) WithMaker(m thumbs.Maker) *Orchestrator {
	o.maker = m
	return o
}

// WithRecorder sets the metrics recorder. Without one, a Prometheus recorder
// is used when a metrics textfile is configured.
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator {
	o.recorder = r
	return o
}

// WithClock sets the clock used for report timestamps and default post dates.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// WithLogger sets a custom logger.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	o.logger = logger
	return o
}

// Generator identifies blogbuilder in generated pages.
func Generator() string {
	return "blogbuilder " + version.Version
}

// buildState carries the components and intermediate results of one run.
type buildState struct {
	cfg      *config.Config
	report   *BuildReport
	logger   *slog.Logger
	recorder metrics.Recorder
	oracle   *staleness.Oracle
	loader   *post.Loader
	thumbs   *thumbs.Cache
	pages    *site.Builder
	posts    []post.Post
}

// Run performs a full build. The report is returned even when the build
// fails; err is the error that stopped it.
func (o *Orchestrator) Run(ctx context.Context) (*BuildReport, error) {
	cfg := o.cfg
	report := newBuildReport(uuid.NewString(), o.now())
	logger := o.logger.With(logfields.BuildID(report.BuildID))

	recorder := o.recorder
	var prom *metrics.PrometheusRecorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
		if cfg.Metrics.Textfile != "" {
			prom = metrics.NewPrometheusRecorder(nil)
			recorder = prom
		}
	}

	tmpl := o.templates
	if tmpl == nil {
		tmpl = templates.NewSet(cfg.Paths.Templates).WithLogger(logger)
	}

	bs := &buildState{
		cfg:      cfg,
		report:   report,
		logger:   logger,
		recorder: recorder,
		oracle:   staleness.New().WithLogger(logger),
		loader: post.NewLoader(cfg.Paths.Data, cfg.Site).
			WithRenderer(o.markdown).WithClock(o.now).WithLogger(logger),
		thumbs: thumbs.NewCache(cfg.Paths.Images, cfg.Paths.ThumbsDir(), cfg.ThumbnailSize).
			WithMaker(o.maker).WithWorkers(cfg.Build.Workers).WithLogger(logger),
		pages: site.NewBuilder(cfg, tmpl, Generator()).WithLogger(logger),
	}

	logger.Info("Build started", logfields.Path(cfg.Paths.Root), logfields.Output(cfg.Paths.Output))
	err := runStages(ctx, bs, defaultStages())

	if src, ok := tmpl.(interface {
		Sources() map[string]templates.Source
	}); ok {
		report.Templates = src.Sources()
	}
	report.finish(o.now())

	recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	recorder.IncBuildOutcome(string(report.Outcome))
	recorder.SetPosts(report.Posts)

	if cfg.Report.Path != "" {
		if perr := report.Persist(cfg.Report.Path); perr != nil {
			logger.Warn("Failed to persist build report", logfields.Path(cfg.Report.Path), logfields.Error(perr))
		}
	}
	if prom != nil {
		if merr := prom.WriteTextfile(cfg.Metrics.Textfile); merr != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(merr))
		}
	}

	level := slog.LevelInfo
	if report.Outcome != OutcomeSuccess {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "Build finished", slog.String("summary", report.Summary()))
	return report, err
}

func defaultStages() []StageDef {
	return []StageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageCopyStatic, stageCopyStatic},
		{StageLoadPosts, stageLoadPosts},
		{StagePlanOutputs, stagePlanOutputs},
		{StageThumbnails, stageThumbnails},
		{StagePostPages, stagePostPages},
		{StageIndex, stageIndex},
		{StageTagPages, stageTagPages},
		{StageFeed, stageFeed},
	}
}
