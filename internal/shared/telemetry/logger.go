package telemetry

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	outMu sync.RWMutex
	out   io.Writer
)

// SetOutput redirects log lines to w. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
}

func output() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	if out != nil {
		return out
	}
	return os.Stdout
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(zerolog.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(zerolog.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(zerolog.ErrorLevel, msg, fields)
}

func write(level zerolog.Level, msg string, fields map[string]any) {
	logger := zerolog.New(output()).With().
		Str("ts", time.Now().UTC().Format(time.RFC3339)).
		Logger()
	event := logger.WithLevel(level)
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(msg)
}
