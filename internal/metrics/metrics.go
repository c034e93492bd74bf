package metrics

import (
	"sync"
	"time"
)

type kindStats struct {
	fetches       int
	errors        int
	increases     int
	lastLatency   time.Duration
	lastDelay     time.Duration
	lastIncreased time.Time
}

type presenterStats struct {
	deliveries int
	errors     int
	dropped    int
}

// Recorder captures lightweight, in-memory metrics about unread polling.
// When telemetry is enabled it also forwards every observation to OpenTelemetry.
type Recorder struct {
	mu         sync.Mutex
	kinds      map[string]*kindStats
	presenters map[string]*presenterStats
	otel       *otelInstruments
	now        func() time.Time
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		kinds:      make(map[string]*kindStats),
		presenters: make(map[string]*presenterStats),
		otel:       otel,
		now:        time.Now,
	}
}

// RecordFetch counts one unread-count fetch for kind and stores its latency.
func (r *Recorder) RecordFetch(kind string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureKind(kind)
	stats.fetches++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetch(kind, duration, err)
	}
}

// RecordIncrease counts an emitted increase and how many new items it carried.
func (r *Recorder) RecordIncrease(kind string, delta int) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureKind(kind)
	stats.increases++
	stats.lastIncreased = r.now()
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordIncrease(kind, delta)
	}
}

// RecordScheduledDelay stores the delay chosen before the next fetch.
func (r *Recorder) RecordScheduledDelay(kind string, delay time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.ensureKind(kind).lastDelay = delay
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDelay(kind, delay)
	}
}

// RecordPresent tracks a presenter delivery attempt.
func (r *Recorder) RecordPresent(presenter string, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensurePresenter(presenter)
	stats.deliveries++
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPresent(presenter, err)
	}
}

// RecordDropped tracks an increase that never reached the presenters.
func (r *Recorder) RecordDropped(presenter string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.ensurePresenter(presenter).dropped++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordDropped(presenter)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the current stats for one kind.
type Snapshot struct {
	Fetches       int
	Errors        int
	Increases     int
	LastLatency   time.Duration
	LastDelay     time.Duration
	LastIncreased time.Time
}

func (r *Recorder) Snapshot(kind string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.kinds[kind]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Fetches:       stats.fetches,
		Errors:        stats.errors,
		Increases:     stats.increases,
		LastLatency:   stats.lastLatency,
		LastDelay:     stats.lastDelay,
		LastIncreased: stats.lastIncreased,
	}
}

// PresenterSnapshot is a copy of the delivery stats for one presenter.
type PresenterSnapshot struct {
	Deliveries int
	Errors     int
	Dropped    int
}

func (r *Recorder) PresenterSnapshot(presenter string) PresenterSnapshot {
	if r == nil {
		return PresenterSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.presenters[presenter]
	if !ok || stats == nil {
		return PresenterSnapshot{}
	}
	return PresenterSnapshot{
		Deliveries: stats.deliveries,
		Errors:     stats.errors,
		Dropped:    stats.dropped,
	}
}

// caller holds r.mu
func (r *Recorder) ensureKind(kind string) *kindStats {
	stats, ok := r.kinds[kind]
	if !ok {
		stats = &kindStats{}
		r.kinds[kind] = stats
	}
	return stats
}

// caller holds r.mu
func (r *Recorder) ensurePresenter(name string) *presenterStats {
	stats, ok := r.presenters[name]
	if !ok {
		stats = &presenterStats{}
		r.presenters[name] = stats
	}
	return stats
}
