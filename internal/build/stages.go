package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageCopyStatic    StageName = "copy_static"
	StageLoadPosts     StageName = "load_posts"
	StagePlanOutputs   StageName = "plan_outputs"
	StageThumbnails    StageName = "thumbnails"
	StagePostPages     StageName = "post_pages"
	StageIndex         StageName = "index"
	StageTagPages      StageName = "tag_pages"
	StageFeed          StageName = "feed"
)

// Stage is one unit of build work.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error or on cancellation.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			ce := errors.WrapError(err, errors.CategoryCanceled, "build canceled").
				WithContext("stage", string(st.Name)).Build()
			bs.report.AddError(st.Name, ce)
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return ce
		}

		bs.logger.Debug("Stage started", logfields.Stage(string(st.Name)))
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.recordStageDuration(st.Name, dur)
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		result := classifyStageResult(err)
		bs.recorder.IncStageResult(string(st.Name), result)
		bs.logger.Info("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			slog.String("result", string(result)))

		switch result {
		case metrics.ResultSuccess:
		case metrics.ResultWarning:
			bs.report.AddWarning(st.Name, err)
		default:
			bs.report.AddError(st.Name, err)
			return err
		}
	}
	return nil
}

func classifyStageResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.HasCategory(err, errors.CategoryCanceled):
		return metrics.ResultCanceled
	case errors.GetSeverity(err) == errors.SeverityWarning:
		return metrics.ResultWarning
	default:
		return metrics.ResultFatal
	}
}
