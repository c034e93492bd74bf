package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/visibility"
)

// notifySignals is swapped in tests to feed signals without touching the process.
var notifySignals = func(ch chan<- os.Signal, sigs ...os.Signal) func() {
	signal.Notify(ch, sigs...)
	return func() { signal.Stop(ch) }
}

// watchVisibilitySignals flips obs on the visibility signals until ctx ends.
func watchVisibilitySignals(ctx context.Context, obs *visibility.Observer, logger *slog.Logger) {
	if len(visibilitySignals) == 0 {
		<-ctx.Done()
		return
	}
	sigs := make([]os.Signal, 0, len(visibilitySignals))
	for sig := range visibilitySignals {
		sigs = append(sigs, sig)
	}

	ch := make(chan os.Signal, 4)
	stop := notifySignals(ch, sigs...)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			visible, ok := visibilitySignals[sig]
			if !ok {
				continue
			}
			if obs.Set(visible) {
				logging.Info(logger, "visibility changed by signal",
					slog.Bool(logging.FieldVisible, visible),
					slog.String("signal", sig.String()),
				)
			}
		}
	}
}
