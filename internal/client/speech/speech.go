// Package speech turns a live audio stream into interim and final transcript
// events. It knows nothing about tones, modes or persistence.
package speech

import (
	"context"
	"errors"
	"io"
)

// Reason classifies why capture stopped with an error.
type Reason string

const (
	ReasonNoSpeech     Reason = "no-speech"
	ReasonAudioCapture Reason = "audio-capture"
	ReasonNotAllowed   Reason = "not-allowed"
	ReasonOther        Reason = "other"
)

var (
	ErrUnsupported  = errors.New("speech recognition unsupported")
	ErrPermission   = errors.New("audio access not allowed")
	ErrNoSpeech     = errors.New("no speech detected")
	ErrAudioCapture = errors.New("audio capture failed")
)

// Event is one transcript update from an engine.
type Event struct {
	Text  string
	Final bool
}

// Engine opens a recognition stream fed from audio. The stream must stop
// reading audio once ctx is done.
type Engine interface {
	Open(ctx context.Context, audio io.Reader) (Stream, error)
}

// Stream yields transcript events until io.EOF or an error.
type Stream interface {
	Recv(ctx context.Context) (Event, error)
	Close() error
}

// Source provides raw audio. Open returns ErrPermission when access is refused.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ReasonFor maps an engine or source error onto a Reason.
func ReasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrNoSpeech):
		return ReasonNoSpeech
	case errors.Is(err, ErrAudioCapture):
		return ReasonAudioCapture
	case errors.Is(err, ErrPermission):
		return ReasonNotAllowed
	default:
		return ReasonOther
	}
}
