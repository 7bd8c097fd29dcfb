package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartmail-backend/internal/client/api"
	"smartmail-backend/internal/email"
)

type fakeTransport struct {
	mu    sync.Mutex
	calls []email.Request
	gate  chan struct{}
	err   error
}

func (f *fakeTransport) Generate(ctx context.Context, req email.Request) (email.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return email.Result{}, f.err
	}
	return email.Result{
		GeneratedText: "Dear team, " + req.SourceText,
		Tone:          req.Tone,
		Mode:          req.Mode,
		Timestamp:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Success:       true,
	}, nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustRequest(t *testing.T) email.Request {
	t.Helper()
	req, err := email.NewRequest("tell the team the launch moved to friday", email.ToneProfessional, email.ModeRewrite, true)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func TestSubmitFulfilled(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr)
	var phases []Phase
	p.OnPhase(func(ph Phase) { phases = append(phases, ph) })

	res, err := p.Submit(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Success || p.Phase() != PhaseFulfilled {
		t.Fatalf("expected fulfilled, got %s %#v", p.Phase(), res)
	}
	if p.Result().GeneratedText != res.GeneratedText {
		t.Fatalf("result not stored")
	}
	if len(phases) != 2 || phases[0] != PhasePending || phases[1] != PhaseFulfilled {
		t.Fatalf("unexpected phases: %v", phases)
	}
}

func TestSubmitWhilePendingIsBusy(t *testing.T) {
	tr := &fakeTransport{gate: make(chan struct{})}
	p := New(tr)

	req := mustRequest(t)
	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), req)
		done <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for p.Phase() != PhasePending {
		if time.Now().After(deadline) {
			t.Fatalf("pipeline never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := p.Submit(context.Background(), req); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := p.Regenerate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from regenerate, got %v", err)
	}
	if err := p.Reset(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from reset, got %v", err)
	}

	close(tr.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := tr.callCount(); n != 1 {
		t.Fatalf("expected one transport call, got %d", n)
	}
}

func TestSubmitRejectedKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
		msg  string
	}{
		{name: "service", err: &api.ServiceError{Status: 502, Message: "generation failed"}, kind: KindService, msg: "generation failed"},
		{name: "network", err: &api.TransportError{Op: "POST /generate", Err: errors.New("connection refused")}, kind: KindNetwork, msg: "Network error: connection refused"},
		{name: "deadline", err: context.DeadlineExceeded, kind: KindNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(&fakeTransport{err: tc.err})
			res, err := p.Submit(context.Background(), mustRequest(t))

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
			if genErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, genErr.Kind)
			}
			if tc.msg != "" && genErr.Message != tc.msg {
				t.Fatalf("unexpected message %q", genErr.Message)
			}
			if res.Success || res.ErrorMessage == "" {
				t.Fatalf("rejected result should carry only an error: %#v", res)
			}
			if p.Phase() != PhaseRejected || p.Err() == nil {
				t.Fatalf("expected rejected phase")
			}
		})
	}
}

func TestRegenerateResubmitsLastRequest(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr)

	if _, err := p.Regenerate(context.Background()); !errors.Is(err, ErrNothingToRegenerate) {
		t.Fatalf("expected ErrNothingToRegenerate, got %v", err)
	}

	req := mustRequest(t)
	if _, err := p.Submit(context.Background(), req); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := p.Regenerate(context.Background()); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(tr.calls) != 2 || tr.calls[1] != req {
		t.Fatalf("expected verbatim resubmit, got %#v", tr.calls)
	}
}

func TestInvalidRequestHasNoSideEffects(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr)

	_, err := p.Submit(context.Background(), email.Request{SourceText: "short", Tone: email.ToneCasual, Mode: email.ModeWrite})
	if !errors.Is(err, email.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if tr.callCount() != 0 || p.Phase() != PhaseIdle {
		t.Fatalf("invalid request reached the transport")
	}
	if _, ok := p.LastRequest(); ok {
		t.Fatalf("invalid request should not be remembered")
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	p := New(&fakeTransport{})
	if _, err := p.Submit(context.Background(), mustRequest(t)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := p.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.Phase() != PhaseIdle || p.Result().Success {
		t.Fatalf("expected idle with empty result")
	}
	if _, ok := p.LastRequest(); ok {
		t.Fatalf("reset should forget the last request")
	}
	if PhaseIdle.Settled() || !PhaseRejected.Settled() {
		t.Fatalf("unexpected Settled values")
	}
}

func TestDiscardDropsPendingOutcome(t *testing.T) {
	tr := &fakeTransport{gate: make(chan struct{})}
	p := New(tr)

	req := mustRequest(t)
	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), req)
		done <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for p.Phase() != PhasePending {
		if time.Now().After(deadline) {
			t.Fatalf("pipeline never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	p.Discard()
	if p.Phase() != PhasePending {
		t.Fatalf("discard must not release the in-flight slot, got %s", p.Phase())
	}
	if _, err := p.Submit(context.Background(), req); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while the discarded call runs, got %v", err)
	}

	close(tr.gate)
	if err := <-done; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}
	if p.Phase() != PhaseIdle || p.Result().Success {
		t.Fatalf("expected idle with no stored result, got %s %#v", p.Phase(), p.Result())
	}
	if _, ok := p.LastRequest(); ok {
		t.Fatalf("discarded request should not be regenerable")
	}
}

func TestDiscardWhenSettled(t *testing.T) {
	p := New(&fakeTransport{})
	if _, err := p.Submit(context.Background(), mustRequest(t)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	p.Discard()
	if p.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %s", p.Phase())
	}
	if _, err := p.Submit(context.Background(), mustRequest(t)); err != nil {
		t.Fatalf("submit after discard: %v", err)
	}
	if p.Phase() != PhaseFulfilled {
		t.Fatalf("later submits should settle normally, got %s", p.Phase())
	}
}
