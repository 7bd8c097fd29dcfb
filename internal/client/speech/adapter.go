package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"smartmail-backend/internal/shared/telemetry"
)

// Handlers receive adapter events. Nil handlers are skipped. Handlers run on
// the capture goroutine and may call Stop.
type Handlers struct {
	OnInterim func(text string)
	OnFinal   func(text string)
	OnError   func(reason Reason)
	OnEnded   func()
}

// Adapter drives one capture session at a time.
type Adapter struct {
	engine Engine
	source Source

	// NoSpeechTimeout stops capture with ReasonNoSpeech when no transcript
	// arrives in time. Zero disables it.
	NoSpeechTimeout time.Duration

	mu       sync.Mutex
	handlers Handlers
	cur      *capture
	last     *capture
}

type capture struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAdapter(engine Engine, source Source) *Adapter {
	return &Adapter{engine: engine, source: source}
}

func (a *Adapter) SetHandlers(h Handlers) {
	a.mu.Lock()
	a.handlers = h
	a.mu.Unlock()
}

// Active reports whether a capture session is running.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cur != nil
}

// Start begins capture. Calling it while active is a no-op.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur != nil {
		return nil
	}
	if a.engine == nil || a.source == nil {
		return ErrUnsupported
	}

	runCtx, cancel := context.WithCancel(ctx)
	audio, err := a.source.Open(runCtx)
	if err != nil {
		cancel()
		if errors.Is(err, ErrPermission) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrAudioCapture, err)
	}
	stream, err := a.engine.Open(runCtx, audio)
	if err != nil {
		cancel()
		audio.Close()
		return fmt.Errorf("open speech stream: %w", err)
	}

	c := &capture{cancel: cancel, done: make(chan struct{})}
	a.cur = c
	a.last = c
	go a.run(runCtx, c, stream, audio)
	return nil
}

// Stop ends the current capture. It is safe to call at any time.
func (a *Adapter) Stop() {
	a.mu.Lock()
	c := a.cur
	a.cur = nil
	a.mu.Unlock()
	if c != nil {
		c.cancel()
	}
}

// Done is closed once the most recent capture has ended and OnEnded has
// returned. Before the first Start it returns a closed channel.
func (a *Adapter) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last != nil {
		return a.last.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

func (a *Adapter) run(ctx context.Context, c *capture, stream Stream, audio io.Closer) {
	defer func() {
		stream.Close()
		audio.Close()
		a.mu.Lock()
		if a.cur == c {
			a.cur = nil
		}
		a.mu.Unlock()
		c.cancel()
		if h := a.snapshot(); h.OnEnded != nil {
			h.OnEnded()
		}
		close(c.done)
	}()

	recvCtx := ctx
	stopWaiting := func() {}
	if a.NoSpeechTimeout > 0 {
		recvCtx, stopWaiting = context.WithTimeout(ctx, a.NoSpeechTimeout)
	}
	defer func() { stopWaiting() }()

	for {
		ev, err := stream.Recv(recvCtx)
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, io.EOF):
			case recvCtx.Err() != nil:
				a.fail(ErrNoSpeech)
			default:
				a.fail(err)
			}
			return
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			continue
		}
		if recvCtx != ctx {
			stopWaiting()
			recvCtx = ctx
		}
		h := a.snapshot()
		if ev.Final {
			if h.OnFinal != nil {
				h.OnFinal(text)
			}
		} else if h.OnInterim != nil {
			h.OnInterim(text)
		}
	}
}

func (a *Adapter) fail(err error) {
	reason := ReasonFor(err)
	telemetry.Warn("speech.error", map[string]any{"reason": string(reason), "error": err.Error()})
	if h := a.snapshot(); h.OnError != nil {
		h.OnError(reason)
	}
}

func (a *Adapter) snapshot() Handlers {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.handlers
}
