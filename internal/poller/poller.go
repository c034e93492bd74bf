package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/metrics"
	"github.com/moltgram/unread-notifier/internal/providers"
	"github.com/moltgram/unread-notifier/internal/timeutil"
	"github.com/moltgram/unread-notifier/internal/visibility"
)

const (
	visibleInterval = 15 * time.Second
	hiddenInterval  = 60 * time.Second

	// First failure waits 2^1 s; each further failure doubles, capped at backoffMax.
	backoffInitial = 2 * time.Second
	backoffMax     = 120 * time.Second
)

// IncreaseFunc receives every increase the poller observes.
// It runs on the poller goroutine and should hand work off rather than block.
// To stop the poller from inside the callback, pass ctx to Stop.
type IncreaseFunc func(ctx context.Context, inc domain.Increase)

// Poller keeps the unread count for one kind up to date and reports increases.
type Poller struct {
	kind       domain.Kind
	provider   providers.CountProvider
	visibility visibility.Source
	onIncrease IncreaseFunc
	logger     *slog.Logger
	metrics    *metrics.Recorder
	clock      timeutil.Clock

	mu          sync.Mutex
	state       State
	started     bool
	generation  uint64
	lastCount   int
	errorStreak int
	backoff     *backoff.ExponentialBackOff
	retryDelay  time.Duration
	timer       timeutil.Timer
	cancel      context.CancelFunc
	visible     bool
	nextDelay   time.Duration
	lastError   string
	lastAttempt time.Time
	lastSuccess time.Time

	// guard is held across the liveness re-check and the provider call or callback that follows it.
	// Stop acquires it after bumping the generation, so nothing it covers starts after Stop returns.
	guard chan struct{}
	done  chan struct{}
}

// guardScope marks contexts handed to the provider and the callback while guard is held.
type guardScope struct {
	poller *Poller
	active atomic.Bool
}

type guardScopeKey struct{}

// New constructs an Idle poller. A nil visibility source is treated as always visible.
func New(kind domain.Kind, provider providers.CountProvider, vis visibility.Source, onIncrease IncreaseFunc, logger *slog.Logger, recorder *metrics.Recorder) *Poller {
	if vis == nil {
		vis = visibility.Static(true)
	}
	return &Poller{
		kind:       kind,
		provider:   provider,
		visibility: vis,
		onIncrease: onIncrease,
		logger:     logging.With(logger, slog.String(logging.FieldKind, kind.String())),
		metrics:    recorder,
		clock:      timeutil.Real(),
		state:      StateIdle,
		lastCount:  domain.NoCount,
		backoff:    newBackoff(),
		guard:      make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffInitial
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = backoffMax
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Kind returns the counter this poller tracks.
func (p *Poller) Kind() domain.Kind {
	return p.kind
}

// Start issues the first fetch immediately and keeps polling until Stop is called or ctx ends.
// Starting twice, or after Stop, does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.state == StateTerminated {
		p.mu.Unlock()
		return
	}
	p.started = true
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	gen := p.generation
	wake, unsubscribe := p.visibility.Subscribe()
	p.visible = p.visibility.Visible()
	p.mu.Unlock()

	logging.Info(p.logger, "poller started", slog.Bool(logging.FieldVisible, p.visibility.Visible()))
	go p.run(runCtx, gen, wake, unsubscribe)
}

// Stop cancels the pending timer and any in-flight fetch, then waits for that fetch or a running
// callback to return. Once it returns nil no further fetch is issued and no further increase is
// reported. If ctx ends first the poller is still terminated and ctx.Err() is returned.
// Stop is idempotent and safe before Start.
func (p *Poller) Stop(ctx context.Context) error {
	if p.terminate() {
		logging.Info(p.logger, "poller stopped")
	}
	if p.holdsGuard(ctx) {
		return nil
	}

	select {
	case p.guard <- struct{}{}:
		<-p.guard
		return nil
	default:
	}
	select {
	case p.guard <- struct{}{}:
		<-p.guard
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// holdsGuard reports whether ctx was handed out by this poller while it holds guard,
// i.e. Stop is being called from the provider or the callback.
func (p *Poller) holdsGuard(ctx context.Context) bool {
	scope, ok := ctx.Value(guardScopeKey{}).(*guardScope)
	return ok && scope.poller == p && scope.active.Load()
}

// guarded runs fn while holding guard, provided the poller is still on generation gen.
// It reports whether fn ran.
func (p *Poller) guarded(ctx context.Context, gen uint64, fn func(ctx context.Context)) bool {
	p.guard <- struct{}{}
	defer func() { <-p.guard }()

	p.mu.Lock()
	live := p.generation == gen
	p.mu.Unlock()
	if !live {
		return false
	}

	scope := &guardScope{poller: p}
	scope.active.Store(true)
	defer scope.active.Store(false)
	fn(context.WithValue(ctx, guardScopeKey{}, scope))
	return true
}

// Done is closed once the polling goroutine has exited, or immediately when stopped before Start.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Count returns the last known unread count, or domain.NoCount before the first success.
func (p *Poller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCount
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Kind:                p.kind,
		State:               p.state,
		Count:               p.lastCount,
		ConsecutiveFailures: p.errorStreak,
		LastError:           p.lastError,
		LastAttempt:         p.lastAttempt,
		LastSuccess:         p.lastSuccess,
		NextDelay:           p.nextDelay,
		Visible:             p.visible,
	}
}

// terminate moves the poller to Terminated and reports whether this call did so.
func (p *Poller) terminate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateTerminated {
		return false
	}
	p.state = StateTerminated
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	if !p.started {
		close(p.done)
	}
	return true
}

func (p *Poller) run(ctx context.Context, gen uint64, wake <-chan struct{}, unsubscribe func()) {
	defer close(p.done)
	defer unsubscribe()

	timerC := p.poll(ctx, gen)
	for timerC != nil {
		select {
		case <-ctx.Done():
			p.terminate()
			return
		case <-timerC:
			timerC = p.poll(ctx, gen)
		case <-wake:
			if p.becameVisible(gen) {
				logging.Debug(p.logger, "became visible, fetching now")
				timerC = p.poll(ctx, gen)
			}
		}
	}
}

// becameVisible records the current visibility and reports a hidden->visible transition.
// On that transition the pending timer is cancelled.
func (p *Poller) becameVisible(gen uint64) bool {
	now := p.visibility.Visible()

	p.mu.Lock()
	defer p.mu.Unlock()

	wasHidden := !p.visible
	p.visible = now
	if !wasHidden || !now || p.generation != gen {
		return false
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	return true
}

// poll runs one Fetching cycle and returns the channel of the next timer,
// or nil when the poller was stopped in the meantime.
func (p *Poller) poll(ctx context.Context, gen uint64) <-chan time.Time {
	var (
		count int
		err   error
	)
	issued := p.guarded(ctx, gen, func(ctx context.Context) {
		p.mu.Lock()
		if p.generation == gen {
			p.state = StateFetching
			p.lastAttempt = p.clock.Now()
		}
		p.mu.Unlock()
		count, err = p.fetch(ctx)
	})
	if !issued {
		return nil
	}
	visible := p.visibility.Visible()

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return nil
	}
	p.visible = visible
	inc, emit := p.applyLocked(count, err)
	delay := p.scheduleLocked()
	timerC := p.timer.C()
	streak := p.errorStreak
	p.mu.Unlock()

	p.metrics.RecordScheduledDelay(p.kind.String(), delay)
	if err != nil {
		logging.Warn(p.logger, "unread poll failed",
			slog.Int(logging.FieldStreak, streak),
			slog.Int64(logging.FieldDelayMS, timeutil.Millis(delay)),
			"error", err,
		)
	} else {
		logging.Debug(p.logger, "unread poll ok",
			slog.Int(logging.FieldCount, count),
			slog.Int64(logging.FieldDelayMS, timeutil.Millis(delay)),
		)
	}

	if emit {
		p.metrics.RecordIncrease(p.kind.String(), inc.Delta())
		logging.Info(p.logger, "unread count increased",
			slog.Int(logging.FieldCount, inc.Count),
			slog.Int(logging.FieldPrevious, inc.Previous),
		)
		if p.onIncrease != nil {
			p.guarded(ctx, gen, func(ctx context.Context) { p.onIncrease(ctx, inc) })
		}
	}
	return timerC
}

// fetch never lets a provider panic escape into the scheduling loop.
func (p *Poller) fetch(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, &providers.FetchError{Kind: p.kind, Reason: providers.ReasonNetwork, Err: fmt.Errorf("provider panic: %v", r)}
		}
	}()
	return p.provider.FetchCount(ctx, p.kind)
}

// applyLocked folds a fetch result into the poll state. Caller holds p.mu.
func (p *Poller) applyLocked(count int, err error) (domain.Increase, bool) {
	if err != nil {
		p.errorStreak++
		p.lastError = err.Error()
		p.retryDelay = p.backoff.NextBackOff()
		if p.retryDelay == backoff.Stop {
			p.retryDelay = backoffMax
		}
		return domain.Increase{}, false
	}

	previous := p.lastCount
	p.lastCount = count
	p.errorStreak = 0
	p.lastError = ""
	p.lastSuccess = p.clock.Now()
	p.retryDelay = 0
	p.backoff.Reset()

	if previous == domain.NoCount || count <= previous {
		return domain.Increase{}, false
	}
	return domain.Increase{Kind: p.kind, Count: count, Previous: previous, At: p.lastSuccess}, true
}

// scheduleLocked arms the next timer. Caller holds p.mu.
func (p *Poller) scheduleLocked() time.Duration {
	delay := nextDelay(p.visible, p.retryDelay)
	p.timer = p.clock.NewTimer(delay)
	p.nextDelay = delay
	p.state = StateScheduled
	return delay
}

// nextDelay is the visibility base, raised to the back-off delay while failures persist.
// The back-off acts as a floor: it never shortens the base cadence.
func nextDelay(visible bool, retryDelay time.Duration) time.Duration {
	base := visibleInterval
	if !visible {
		base = hiddenInterval
	}
	return max(base, retryDelay)
}
