package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/metrics"
)

// instrumentedProvider records metrics and debug logs for every fetch attempt.
type instrumentedProvider struct {
	inner   CountProvider
	name    string
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewInstrumentedProvider wraps inner so each FetchCount is timed, counted, and logged.
// It never retries: one call to FetchCount is one upstream request.
func NewInstrumentedProvider(inner CountProvider, name string, logger *slog.Logger, recorder *metrics.Recorder) CountProvider {
	if name == "" {
		name = "provider"
	}
	return &instrumentedProvider{
		inner:   inner,
		name:    name,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

func (p *instrumentedProvider) FetchCount(ctx context.Context, kind domain.Kind) (int, error) {
	start := p.now()
	count, err := p.inner.FetchCount(ctx, kind)
	elapsed := p.now().Sub(start)

	p.metrics.RecordFetch(kind.String(), elapsed, err)

	logger := logging.FromContext(ctx, p.logger)
	if err != nil {
		logging.Warn(logger, "unread fetch failed",
			slog.String(logging.FieldProvider, p.name),
			slog.String(logging.FieldKind, kind.String()),
			slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
			"error", err,
		)
		return 0, err
	}
	logging.Debug(logger, "unread fetch ok",
		slog.String(logging.FieldProvider, p.name),
		slog.String(logging.FieldKind, kind.String()),
		slog.Int(logging.FieldCount, count),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
	return count, nil
}

// Unwrap returns the wrapped provider.
func (p *instrumentedProvider) Unwrap() CountProvider {
	return p.inner
}
