package email

import "time"

// TimestampLayout is the ISO-8601 layout used on the wire.
const TimestampLayout = time.RFC3339

// Result is the settled outcome of one generation. When Success is false only
// ErrorMessage is meaningful.
type Result struct {
	GeneratedText string
	HTML          string
	Tone          Tone
	Mode          Mode
	Provider      string
	HistoryID     string
	Timestamp     time.Time
	Success       bool
	ErrorMessage  string
}

// TimestampString formats the timestamp for the wire.
func (r Result) TimestampString() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.UTC().Format(TimestampLayout)
}
