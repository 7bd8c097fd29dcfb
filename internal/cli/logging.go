package cli

import (
	"io"

	"github.com/rs/zerolog"

	"smartmail-backend/internal/shared/telemetry"
)

// setupLogging routes telemetry through a console writer when verbose and
// discards it otherwise so command output stays clean.
func setupLogging(w io.Writer, verbose bool) {
	if !verbose {
		telemetry.SetOutput(io.Discard)
		return
	}
	telemetry.SetOutput(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    !isTerminal(w),
	})
}
