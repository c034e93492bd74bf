package teststubs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// ErrScripted is a convenience failure for scripted results.
var ErrScripted = errors.New("scripted failure")

// Result is one scripted FetchCount outcome.
type Result struct {
	Count int
	Err   error
}

// OK and Fail build scripted results.
func OK(count int) Result { return Result{Count: count} }
func Fail() Result        { return Result{Err: ErrScripted} }

// StubProvider is a test double for providers.CountProvider that replays Results in order.
// The last result repeats once the script runs out; an empty script returns 0.
type StubProvider struct {
	mu      sync.Mutex
	Results []Result
	next    int

	Calls atomic.Int32

	// Started, when non-nil, receives the kind of every call without blocking the caller.
	Started chan domain.Kind

	// Gate, when non-nil, must be fed once per call before the call returns. Context is ignored,
	// so a gated call completes even after its poller is stopped.
	Gate chan struct{}
}

// NewStubProvider returns a provider that replays results and reports calls on Started.
func NewStubProvider(results ...Result) *StubProvider {
	return &StubProvider{
		Results: results,
		Started: make(chan domain.Kind, 64),
	}
}

// FetchCount returns the next scripted result while tracking calls.
func (s *StubProvider) FetchCount(ctx context.Context, kind domain.Kind) (int, error) {
	_ = ctx
	s.Calls.Add(1)
	if s.Started != nil {
		select {
		case s.Started <- kind:
		default:
		}
	}
	if s.Gate != nil {
		<-s.Gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Results) == 0 {
		return 0, nil
	}
	r := s.Results[len(s.Results)-1]
	if s.next < len(s.Results) {
		r = s.Results[s.next]
		s.next++
	}
	return r.Count, r.Err
}

// RecordingPresenter is a test double for presenter.Presenter.
type RecordingPresenter struct {
	mu     sync.Mutex
	ID     string
	Err    error
	seen   []domain.Increase
	Notify chan domain.Increase
}

// NewRecordingPresenter returns a presenter that records every increase and echoes it on Notify.
func NewRecordingPresenter(name string) *RecordingPresenter {
	return &RecordingPresenter{ID: name, Notify: make(chan domain.Increase, 64)}
}

func (r *RecordingPresenter) Name() string { return r.ID }

// Present records inc and returns the configured error.
func (r *RecordingPresenter) Present(ctx context.Context, inc domain.Increase) error {
	_ = ctx
	r.mu.Lock()
	r.seen = append(r.seen, inc)
	err := r.Err
	r.mu.Unlock()
	if r.Notify != nil {
		select {
		case r.Notify <- inc:
		default:
		}
	}
	return err
}

// Seen returns a copy of every increase presented so far.
func (r *RecordingPresenter) Seen() []domain.Increase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Increase(nil), r.seen...)
}
