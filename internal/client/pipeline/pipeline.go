// Package pipeline runs one generation request at a time against a
// Transport and tracks its settled outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"smartmail-backend/internal/client/api"
	"smartmail-backend/internal/email"
	"smartmail-backend/internal/shared/telemetry"
)

// Phase is where a pipeline sits in its request lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseFulfilled
	PhaseRejected
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseRejected:
		return "rejected"
	default:
		return "idle"
	}
}

// Settled reports whether the phase is a final outcome.
func (p Phase) Settled() bool {
	return p == PhaseFulfilled || p == PhaseRejected
}

var (
	ErrBusy                = errors.New("a generation is already in progress")
	ErrNothingToRegenerate = errors.New("nothing to regenerate")
	// ErrDiscarded is returned by a Submit whose outcome was dropped by Discard.
	ErrDiscarded = errors.New("generation discarded")
)

// Transport performs one generation call.
type Transport interface {
	Generate(ctx context.Context, req email.Request) (email.Result, error)
}

// ErrorKind separates failures to reach the service from failures it reports.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindService ErrorKind = "service"
)

// GenerationError is the rejected outcome of a submit.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Pipeline moves idle -> pending -> fulfilled | rejected.
type Pipeline struct {
	transport Transport

	mu        sync.Mutex
	phase     Phase
	result    email.Result
	err       *GenerationError
	last      *email.Request
	observers []func(Phase)
	// epoch is bumped by Discard; a submit that started under an older epoch
	// does not store its outcome.
	epoch uint64
}

// New returns an idle pipeline that sends requests through t.
func New(t Transport) *Pipeline {
	return &Pipeline{transport: t}
}

// OnPhase registers fn to run after every phase change.
func (p *Pipeline) OnPhase(fn func(Phase)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	p.mu.Unlock()
}

// Submit sends req and blocks until it settles. While another submit is
// pending it returns ErrBusy without touching the transport.
func (p *Pipeline) Submit(ctx context.Context, req email.Request) (email.Result, error) {
	if err := req.Validate(); err != nil {
		return email.Result{}, err
	}

	p.mu.Lock()
	if p.phase == PhasePending {
		p.mu.Unlock()
		return email.Result{}, ErrBusy
	}
	p.phase = PhasePending
	p.err = nil
	p.result = email.Result{}
	last := req
	p.last = &last
	epoch := p.epoch
	p.mu.Unlock()
	p.notify(PhasePending)

	start := time.Now()
	res, err := p.transport.Generate(ctx, req)

	p.mu.Lock()
	if p.epoch != epoch {
		p.phase = PhaseIdle
		p.mu.Unlock()
		telemetry.Info("pipeline.discarded", map[string]any{
			"tone":        string(req.Tone),
			"mode":        string(req.Mode),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		p.notify(PhaseIdle)
		return email.Result{}, ErrDiscarded
	}
	var genErr *GenerationError
	if err != nil {
		genErr = classify(err)
		p.err = genErr
		p.result = email.Result{
			Tone:         req.Tone,
			Mode:         req.Mode,
			Timestamp:    time.Now().UTC(),
			ErrorMessage: genErr.Message,
		}
		p.phase = PhaseRejected
	} else {
		p.result = res
		p.phase = PhaseFulfilled
	}
	phase, result := p.phase, p.result
	p.mu.Unlock()

	fields := map[string]any{
		"phase":       phase.String(),
		"tone":        string(req.Tone),
		"mode":        string(req.Mode),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if genErr != nil {
		fields["kind"] = string(genErr.Kind)
		fields["error"] = genErr.Message
		telemetry.Warn("pipeline.settled", fields)
	} else {
		telemetry.Info("pipeline.settled", fields)
	}
	p.notify(phase)

	if genErr != nil {
		return result, genErr
	}
	return result, nil
}

// Regenerate resubmits the last request verbatim.
func (p *Pipeline) Regenerate(ctx context.Context) (email.Result, error) {
	p.mu.Lock()
	if p.last == nil {
		p.mu.Unlock()
		return email.Result{}, ErrNothingToRegenerate
	}
	req := *p.last
	p.mu.Unlock()
	return p.Submit(ctx, req)
}

// Reset returns a settled pipeline to idle and forgets the last request.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	if p.phase == PhasePending {
		p.mu.Unlock()
		return ErrBusy
	}
	changed := p.phase != PhaseIdle
	p.phase = PhaseIdle
	p.result = email.Result{}
	p.err = nil
	p.last = nil
	p.mu.Unlock()
	if changed {
		p.notify(PhaseIdle)
	}
	return nil
}

// Discard forgets the last request and outcome. Unlike Reset it also works
// while a submit is pending: that submit stays pending until its transport
// call returns, then settles to idle with ErrDiscarded instead of storing
// its result.
func (p *Pipeline) Discard() {
	p.mu.Lock()
	p.epoch++
	p.result = email.Result{}
	p.err = nil
	p.last = nil
	pending := p.phase == PhasePending
	changed := !pending && p.phase != PhaseIdle
	if !pending {
		p.phase = PhaseIdle
	}
	p.mu.Unlock()
	if changed {
		p.notify(PhaseIdle)
	}
}

// Phase is the current lifecycle phase.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Result is the last settled result; zero unless the pipeline has settled.
func (p *Pipeline) Result() email.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Err is the last rejection, nil unless the phase is rejected.
func (p *Pipeline) Err() *GenerationError {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// LastRequest is the request Regenerate would resend, if any.
func (p *Pipeline) LastRequest() (email.Request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return email.Request{}, false
	}
	return *p.last, true
}

func (p *Pipeline) notify(phase Phase) {
	p.mu.Lock()
	observers := slices.Clone(p.observers)
	p.mu.Unlock()
	for _, fn := range observers {
		fn(phase)
	}
}

func classify(err error) *GenerationError {
	var svcErr *api.ServiceError
	if errors.As(err, &svcErr) {
		return &GenerationError{Kind: KindService, Message: svcErr.Message, Err: err}
	}
	var trErr *api.TransportError
	if errors.As(err, &trErr) {
		return &GenerationError{Kind: KindNetwork, Message: "Network error: " + trErr.Err.Error(), Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindNetwork, Message: "Network error: " + err.Error(), Err: err}
	}
	return &GenerationError{Kind: KindService, Message: err.Error(), Err: err}
}
