// Package session holds the editable state behind one SmartMail client
// session and drives the generation pipeline from it.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"smartmail-backend/internal/client/pipeline"
	"smartmail-backend/internal/client/speech"
	"smartmail-backend/internal/email"
)

var ErrNothingToEdit = errors.New("no generated email to edit")

// Controller owns a State. All methods are safe for concurrent use; change
// observers run after the lock is released.
type Controller struct {
	pipe *pipeline.Pipeline

	mu        sync.Mutex
	state     State
	observers []func(State)
}

// New returns a controller in rewrite mode with the professional tone.
func New(p *pipeline.Pipeline) *Controller {
	c := &Controller{
		pipe: p,
		state: State{
			Mode: email.DefaultMode,
			Tone: email.DefaultTone,
		},
	}
	c.state.Invalid = invalidMessage("")
	p.OnPhase(func(ph pipeline.Phase) {
		c.update(func(s *State) { s.Phase = ph })
	})
	return c
}

// OnChange registers fn to receive a snapshot after every change.
func (c *Controller) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetMode switches mode and clears everything tied to the previous one. A
// generation still in flight is discarded: its result never reaches the state.
func (c *Controller) SetMode(mode email.Mode) error {
	parsed, err := email.ParseMode(string(mode))
	if err != nil {
		return err
	}
	c.pipe.Discard()
	c.update(func(s *State) {
		s.Mode = parsed
		s.DraftText = ""
		s.InterimText = ""
		s.SelectedTemplate = ""
		s.LastResult = nil
		s.LastRequest = nil
		s.Notice = Notice{}
		s.Invalid = invalidMessage("")
	})
	return nil
}

func (c *Controller) SetText(text string) {
	c.update(func(s *State) {
		s.DraftText = text
		s.Invalid = invalidMessage(text)
	})
}

// AppendTranscript adds a final transcript to the draft, space separated.
func (c *Controller) AppendTranscript(text string) {
	text = strings.TrimSpace(text)
	c.update(func(s *State) {
		s.InterimText = ""
		if text == "" {
			return
		}
		if strings.TrimSpace(s.DraftText) == "" {
			s.DraftText = text
		} else {
			s.DraftText = strings.TrimRight(s.DraftText, " ") + " " + text
		}
		s.Invalid = invalidMessage(s.DraftText)
	})
}

// SetInterim replaces the interim preview.
func (c *Controller) SetInterim(text string) {
	c.update(func(s *State) { s.InterimText = strings.TrimSpace(text) })
}

// ApplyTemplate loads a template into the draft. It only works in write mode
// and ignores unknown names.
func (c *Controller) ApplyTemplate(name string) bool {
	text, ok := email.Template(name)
	if !ok {
		return false
	}
	applied := false
	c.update(func(s *State) {
		if s.Mode != email.ModeWrite {
			return
		}
		s.SelectedTemplate = name
		s.DraftText = text
		s.Invalid = invalidMessage(text)
		applied = true
	})
	return applied
}

func (c *Controller) SetTone(tone email.Tone) error {
	parsed, err := email.ParseTone(string(tone))
	if err != nil {
		return err
	}
	c.update(func(s *State) { s.Tone = parsed })
	return nil
}

// Validate checks the current draft without changing state.
func (c *Controller) Validate() error {
	c.mu.Lock()
	draft := c.state.DraftText
	c.mu.Unlock()
	_, err := email.ValidateText(draft)
	return err
}

func (c *Controller) CanSubmit() bool {
	return c.Validate() == nil && c.pipe.Phase() != pipeline.PhasePending
}

// BuildRequest snapshots the draft as a validated request.
func (c *Controller) BuildRequest(persist bool) (email.Request, error) {
	c.mu.Lock()
	draft, tone, mode := c.state.DraftText, c.state.Tone, c.state.Mode
	c.mu.Unlock()
	return email.NewRequest(draft, tone, mode, persist)
}

// Submit builds a request from the draft and runs it through the pipeline.
func (c *Controller) Submit(ctx context.Context, persist bool) (email.Result, error) {
	req, err := c.BuildRequest(persist)
	if err != nil {
		c.setError(err)
		return email.Result{}, err
	}
	res, err := c.pipe.Submit(ctx, req)
	c.settle(req, res, err)
	return res, err
}

// Regenerate resubmits the last request.
func (c *Controller) Regenerate(ctx context.Context) (email.Result, error) {
	req, ok := c.pipe.LastRequest()
	if !ok {
		c.setError(pipeline.ErrNothingToRegenerate)
		return email.Result{}, pipeline.ErrNothingToRegenerate
	}
	res, err := c.pipe.Regenerate(ctx)
	c.settle(req, res, err)
	return res, err
}

func (c *Controller) settle(req email.Request, res email.Result, err error) {
	if errors.Is(err, pipeline.ErrDiscarded) {
		return
	}
	if errors.Is(err, pipeline.ErrBusy) {
		c.setError(err)
		return
	}
	c.update(func(s *State) {
		r, q := res, req
		s.LastResult = &r
		s.LastRequest = &q
		if err != nil {
			s.Notice = Notice{Level: NoticeError, Text: errorText(err)}
			return
		}
		s.Notice = Notice{Level: NoticeInfo, Text: "Email generated"}
	})
}

// LoadResultForEditing moves the last generated text into the draft.
func (c *Controller) LoadResultForEditing() error {
	var err error
	c.update(func(s *State) {
		if s.LastResult == nil || !s.LastResult.Success {
			err = ErrNothingToEdit
			return
		}
		s.DraftText = s.LastResult.GeneratedText
		s.InterimText = ""
		s.LastResult = nil
		s.Invalid = invalidMessage(s.DraftText)
	})
	return err
}

// SetNotice replaces the current notice.
func (c *Controller) SetNotice(n Notice) {
	c.update(func(s *State) { s.Notice = n })
}

func (c *Controller) ClearNotice() {
	c.update(func(s *State) { s.Notice = Notice{} })
}

// BindSpeech routes adapter events into the draft.
func (c *Controller) BindSpeech(a *speech.Adapter) {
	a.SetHandlers(speech.Handlers{
		OnInterim: c.SetInterim,
		OnFinal:   c.AppendTranscript,
		OnError: func(reason speech.Reason) {
			c.update(func(s *State) {
				s.Notice = Notice{Level: NoticeError, Text: speechErrorText(reason)}
			})
		},
		// A capture stopped earlier can end after a new one started; only
		// the last capture clears the listening state.
		OnEnded: func() {
			if a.Active() {
				return
			}
			c.update(func(s *State) {
				s.Listening = false
				s.InterimText = ""
			})
		},
	})
}

// StartListening starts the adapter and marks the state as listening.
func (c *Controller) StartListening(ctx context.Context, a *speech.Adapter) error {
	if err := a.Start(ctx); err != nil {
		c.update(func(s *State) {
			s.Notice = Notice{Level: NoticeError, Text: speechErrorText(speech.ReasonFor(err))}
			if errors.Is(err, speech.ErrUnsupported) {
				s.Notice.Text = "Speech recognition is not available"
			}
		})
		return err
	}
	c.update(func(s *State) { s.Listening = a.Active() })
	return nil
}

func (c *Controller) setError(err error) {
	c.update(func(s *State) {
		s.Notice = Notice{Level: NoticeError, Text: errorText(err)}
	})
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	snap := c.state.clone()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()
	for _, obs := range observers {
		obs(snap)
	}
}

func invalidMessage(text string) string {
	if _, err := email.ValidateText(text); err != nil {
		return err.Error()
	}
	return ""
}

func errorText(err error) string {
	var genErr *pipeline.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message
	}
	return err.Error()
}

func speechErrorText(reason speech.Reason) string {
	switch reason {
	case speech.ReasonNoSpeech:
		return "No speech detected. Please try again."
	case speech.ReasonAudioCapture:
		return "Audio capture failed. Check your input device."
	case speech.ReasonNotAllowed:
		return "Audio access was denied."
	default:
		return "Speech recognition error. Please try again."
	}
}
