package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/metrics"
)

var (
	ErrQueueFull        = errors.New("presenter queue full")
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

const (
	defaultQueueSize = 64
	presentTimeout   = 10 * time.Second

	// droppedName is the metrics label for increases that never reached a presenter.
	droppedName = "dispatcher"
)

// History receives every accepted increase.
type History interface {
	Add(domain.Increase)
}

// Dispatcher fans increases out to presenters on a single worker so pollers never block on delivery.
type Dispatcher struct {
	presenters []Presenter
	history    History
	logger     *slog.Logger
	metrics    *metrics.Recorder

	mu      sync.Mutex
	queue   chan domain.Increase
	started bool
	closed  bool
	done    chan struct{}
}

// NewDispatcher builds a dispatcher with a bounded queue. history may be nil.
func NewDispatcher(presenters []Presenter, history History, queueSize int, logger *slog.Logger, recorder *metrics.Recorder) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		presenters: presenters,
		history:    history,
		logger:     logger,
		metrics:    recorder,
		queue:      make(chan domain.Increase, queueSize),
		done:       make(chan struct{}),
	}
}

// Presenters returns the configured presenter names in delivery order.
func (d *Dispatcher) Presenters() []string {
	names := make([]string, 0, len(d.presenters))
	for _, p := range d.presenters {
		names = append(names, p.Name())
	}
	return names
}

// Start launches the delivery worker. ctx bounds every Present call. Calling Start twice does nothing.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run(ctx)
}

// Enqueue accepts inc for delivery without blocking. The increase is recorded in history
// even when the queue is full.
func (d *Dispatcher) Enqueue(inc domain.Increase) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	if d.history != nil {
		d.history.Add(inc)
	}
	select {
	case d.queue <- inc:
		return nil
	default:
		d.metrics.RecordDropped(droppedName)
		return ErrQueueFull
	}
}

// Handle is an IncreaseFunc for pollers; delivery failures are logged, never returned.
// It only enqueues, so ctx is not consulted.
func (d *Dispatcher) Handle(ctx context.Context, inc domain.Increase) {
	_ = ctx
	if err := d.Enqueue(inc); err != nil {
		logging.Warn(d.logger, "increase not queued for presenters",
			slog.String(logging.FieldKind, inc.Kind.String()),
			slog.Int(logging.FieldCount, inc.Count),
			"error", err,
		)
	}
}

// Close stops accepting increases and waits for queued ones to be delivered or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
		if !d.started {
			close(d.done)
		}
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once every accepted increase has been handled after Close.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for inc := range d.queue {
		d.deliver(ctx, inc)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, inc domain.Increase) {
	for _, p := range d.presenters {
		presentCtx, cancel := context.WithTimeout(ctx, presentTimeout)
		err := safePresent(presentCtx, p, inc)
		cancel()

		d.metrics.RecordPresent(p.Name(), err)
		if err != nil {
			logging.Warn(d.logger, "presenter failed",
				slog.String(logging.FieldPresenter, p.Name()),
				slog.String(logging.FieldKind, inc.Kind.String()),
				"error", err,
			)
		}
	}
}

func safePresent(ctx context.Context, p Presenter, inc domain.Increase) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("presenter panic: %v", r)
		}
	}()
	return p.Present(ctx, inc)
}
