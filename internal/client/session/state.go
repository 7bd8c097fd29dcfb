package session

import (
	"smartmail-backend/internal/client/pipeline"
	"smartmail-backend/internal/email"
)

type NoticeLevel string

const (
	NoticeNone  NoticeLevel = ""
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is the single user-facing message the controller is showing.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// State is a copy of the controller's state. LastResult and LastRequest are
// nil until set.
type State struct {
	Mode             email.Mode
	DraftText        string
	InterimText      string
	Tone             email.Tone
	SelectedTemplate string
	LastResult       *email.Result
	LastRequest      *email.Request
	Phase            pipeline.Phase
	Notice           Notice
	Listening        bool

	// Invalid holds the draft's validation message, empty when submittable.
	Invalid string
}

func (s State) clone() State {
	out := s
	if s.LastResult != nil {
		r := *s.LastResult
		out.LastResult = &r
	}
	if s.LastRequest != nil {
		r := *s.LastRequest
		out.LastRequest = &r
	}
	return out
}

// Preview is the draft followed by the pending interim transcript.
func (s State) Preview() string {
	switch {
	case s.InterimText == "":
		return s.DraftText
	case s.DraftText == "":
		return s.InterimText
	default:
		return s.DraftText + " " + s.InterimText
	}
}
