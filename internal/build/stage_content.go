package build

import (
	"context"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

func stageLoadPosts(ctx context.Context, bs *buildState) error {
	posts, err := bs.loader.Load(ctx)
	if err != nil {
		return err
	}
	bs.posts = posts
	bs.report.Posts = len(posts)
	for _, p := range posts {
		bs.report.Fingerprints[p.Slug] = p.Fingerprint
	}
	bs.logger.Info("Loaded posts", logfields.Count(len(posts)), logfields.Path(bs.cfg.Paths.Data))
	return nil
}

// stagePlanOutputs fails the build when two pages would share an output file.
func stagePlanOutputs(_ context.Context, bs *buildState) error {
	plan, err := site.PlanOutputs(bs.posts)
	if err != nil {
		return err
	}
	bs.logger.Debug("Planned outputs", logfields.Count(len(plan)))
	return nil
}

// stageThumbnails never fails the build: every failed image becomes a
// warning issue. Pages referencing a failed image are still rendered.
func stageThumbnails(ctx context.Context, bs *buildState) error {
	var refs []string
	for _, p := range bs.posts {
		refs = append(refs, p.Images...)
	}
	res := bs.thumbs.EnsureAll(ctx, refs)

	bs.report.Thumbnails = ThumbnailCounts{
		Generated: len(res.Generated),
		Cached:    len(res.Cached),
		Failed:    len(res.Failed),
	}
	bs.recorder.AddThumbnails(metrics.ThumbGenerated, len(res.Generated))
	bs.recorder.AddThumbnails(metrics.ThumbCached, len(res.Cached))
	bs.recorder.AddThumbnails(metrics.ThumbFailed, len(res.Failed))

	for _, ref := range res.FailedRefs() {
		err := res.Failed[ref]
		bs.logger.Warn("Thumbnail unavailable", logfields.Image(ref), logfields.Error(err))
		bs.report.AddWarning(StageThumbnails, err)
	}
	return nil
}

func stagePostPages(ctx context.Context, bs *buildState) error {
	res, err := bs.pages.BuildPostPages(ctx, bs.posts)
	bs.report.PagesWritten += res.Written
	bs.report.PagesSkipped += res.Skipped
	bs.recorder.AddPages("post", metrics.PageWritten, res.Written)
	bs.recorder.AddPages("post", metrics.PageSkipped, res.Skipped)
	return err
}

func stageIndex(_ context.Context, bs *buildState) error {
	if err := bs.pages.BuildIndex(bs.posts); err != nil {
		return err
	}
	bs.report.PagesWritten++
	bs.recorder.AddPages("index", metrics.PageWritten, 1)
	return nil
}

func stageTagPages(ctx context.Context, bs *buildState) error {
	n, err := bs.pages.BuildTagPages(ctx, bs.posts)
	bs.report.TagPages = n
	bs.report.PagesWritten += n
	bs.recorder.AddPages("tag", metrics.PageWritten, n)
	return err
}

func stageFeed(_ context.Context, bs *buildState) error {
	if err := bs.pages.BuildFeed(bs.posts); err != nil {
		return err
	}
	bs.report.PagesWritten++
	bs.recorder.AddPages("feed", metrics.PageWritten, 1)
	return nil
}
