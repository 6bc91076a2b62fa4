package build

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/templates"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbs"
)

// Outcome is the final build result state.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// ReportSchemaVersion is bumped on incompatible report JSON changes.
const ReportSchemaVersion = 1

// IssueCode enumerates machine-parseable issue identifiers. Codes are a
// stable contract: append only.
type IssueCode string

const (
	IssueMissingImage   IssueCode = "MISSING_IMAGE"
	IssueThumbnail      IssueCode = "THUMBNAIL_FAILURE"
	IssueSourceParse    IssueCode = "SOURCE_PARSE"
	IssueConflict       IssueCode = "CONFLICT"
	IssueInvalidInput   IssueCode = "INVALID_INPUT"
	IssueRender         IssueCode = "RENDER_FAILURE"
	IssueFileSystem     IssueCode = "FILESYSTEM"
	IssueCanceled       IssueCode = "BUILD_CANCELED"
	IssueGenericFailure IssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one structured problem recorded during a build.
type Issue struct {
	Code     IssueCode     `json:"code"`
	Stage    StageName     `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
	Path     string        `json:"path,omitempty"`
	Image    string        `json:"image,omitempty"`
}

// ThumbnailCounts summarizes the thumbnails stage.
type ThumbnailCounts struct {
	Generated int `json:"generated"`
	Cached    int `json:"cached"`
	Failed    int `json:"failed"`
}

// BuildReport captures the result of one build.
type BuildReport struct {
	SchemaVersion    int                         `json:"schema_version"`
	BuildID          string                      `json:"build_id"`
	Start            time.Time                   `json:"start"`
	End              time.Time                   `json:"end"`
	StageDurations   map[StageName]time.Duration `json:"-"`
	StageDurationsMS map[StageName]float64       `json:"stage_durations_ms"`
	Posts            int                         `json:"posts"`
	PagesWritten     int                         `json:"pages_written"`
	PagesSkipped     int                         `json:"pages_skipped"`
	TagPages         int                         `json:"tag_pages"`
	Thumbnails       ThumbnailCounts             `json:"thumbnails"`
	Fingerprints     map[string]string           `json:"fingerprints"`
	Templates        map[string]templates.Source `json:"templates,omitempty"`
	Issues           []Issue                     `json:"issues"`
	Outcome          Outcome                     `json:"outcome"`

	errs     []error
	warnings []error
}

func newBuildReport(id string, start time.Time) *BuildReport {
	return &BuildReport{
		SchemaVersion:    ReportSchemaVersion,
		BuildID:          id,
		Start:            start,
		StageDurations:   make(map[StageName]time.Duration),
		StageDurationsMS: make(map[StageName]float64),
		Fingerprints:     make(map[string]string),
		Issues:           []Issue{},
	}
}

func (r *BuildReport) recordStageDuration(stage StageName, d time.Duration) {
	r.StageDurations[stage] = d
	r.StageDurationsMS[stage] = float64(d.Microseconds()) / 1000
}

// AddWarning records a non-fatal problem.
func (r *BuildReport) AddWarning(stage StageName, err error) {
	r.warnings = append(r.warnings, err)
	r.Issues = append(r.Issues, newIssue(stage, SeverityWarning, err))
}

// AddError records a build-stopping problem.
func (r *BuildReport) AddError(stage StageName, err error) {
	r.errs = append(r.errs, err)
	r.Issues = append(r.Issues, newIssue(stage, SeverityError, err))
}

// Errors returns the fatal errors recorded.
func (r *BuildReport) Errors() []error { return r.errs }

// Warnings returns the non-fatal errors recorded.
func (r *BuildReport) Warnings() []error { return r.warnings }

func newIssue(stage StageName, severity IssueSeverity, err error) Issue {
	issue := Issue{Code: issueCode(err), Stage: stage, Severity: severity, Message: err.Error()}
	if ce, ok := errors.AsClassified(err); ok {
		issue.Message = ce.Message()
		issue.Path, _ = ce.Context().GetString("path")
		issue.Image, _ = ce.Context().GetString("image")
		if cause := ce.Cause(); cause != nil {
			issue.Message += ": " + cause.Error()
		}
	}
	return issue
}

func issueCode(err error) IssueCode {
	switch errors.GetCategory(err) {
	case errors.CategoryImage:
		if stderrors.Is(err, thumbs.ErrMissingImage) {
			return IssueMissingImage
		}
		return IssueThumbnail
	case errors.CategorySource:
		return IssueSourceParse
	case errors.CategoryConflict:
		return IssueConflict
	case errors.CategoryValidation:
		return IssueInvalidInput
	case errors.CategoryRender:
		return IssueRender
	case errors.CategoryFileSystem:
		return IssueFileSystem
	case errors.CategoryCanceled:
		return IssueCanceled
	default:
		return IssueGenericFailure
	}
}

func (r *BuildReport) finish(end time.Time) {
	r.End = end
	r.deriveOutcome()
}

// deriveOutcome sets Outcome based on recorded errors and warnings.
func (r *BuildReport) deriveOutcome() {
	switch {
	case len(r.errs) > 0:
		for _, e := range r.errs {
			if errors.HasCategory(e, errors.CategoryCanceled) {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
	case len(r.warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("posts=%d written=%d skipped=%d tags=%d thumbs=%d/%d/%d issues=%d duration=%s outcome=%s",
		r.Posts, r.PagesWritten, r.PagesSkipped, r.TagPages,
		r.Thumbnails.Generated, r.Thumbnails.Cached, r.Thumbnails.Failed,
		len(r.Issues), r.End.Sub(r.Start).Truncate(time.Millisecond), r.Outcome)
}

// Persist writes the report as indented JSON to path, atomically.
func (r *BuildReport) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}
