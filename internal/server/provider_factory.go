package server

import (
	"log/slog"

	"github.com/moltgram/unread-notifier/internal/config"
	"github.com/moltgram/unread-notifier/internal/metrics"
	"github.com/moltgram/unread-notifier/internal/providers"
)

// providerFactory assembles the provider with shared instrumentation.
// There is no retry layer: the poller's back-off is the only retry policy.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.CountProvider {
	base, name := selectProvider(cfg, f.logger)
	return f.wrap(base, name)
}

func (f providerFactory) wrap(base providers.CountProvider, name string) providers.CountProvider {
	return providers.NewInstrumentedProvider(base, name, f.logger, f.metrics)
}
