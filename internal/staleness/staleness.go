// Package staleness decides whether a generated file must be rebuilt by
// comparing modification times of its inputs against the existing output.
package staleness

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Oracle answers staleness questions for output artifacts.
type Oracle struct {
	logger *slog.Logger
}

// New creates an Oracle.
func New() *Oracle {
	return &Oracle{logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (o *Oracle) WithLogger(logger *slog.Logger) *Oracle {
	o.logger = logger
	return o
}

// IsStale reports whether output must be regenerated. An output is fresh only
// if it exists and every input exists with a modification time strictly
// before the output's. Any stat failure counts as stale.
func (o *Oracle) IsStale(output string, inputs ...string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return true
	}
	outMod := outInfo.ModTime()

	for _, in := range inputs {
		inInfo, err := os.Stat(in)
		if err != nil {
			o.logger.Debug("Input unavailable, output is stale", logfields.Output(output), logfields.Path(in), logfields.Error(err))
			return true
		}
		if !inInfo.ModTime().Before(outMod) {
			return true
		}
	}
	return false
}
