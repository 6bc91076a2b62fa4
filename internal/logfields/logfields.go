package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPost       = "post"
	KeyPath       = "path"
	KeyImage      = "image"
	KeyOutput     = "output"
	KeyTag        = "tag"
	KeyTemplate   = "template"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Post(slug string) slog.Attr      { return slog.String(KeyPost, slug) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Image(ref string) slog.Attr      { return slog.String(KeyImage, ref) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Tag(t string) slog.Attr          { return slog.String(KeyTag, t) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
