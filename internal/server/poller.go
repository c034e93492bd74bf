package server

import (
	"context"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/poller"
)

// Poller defines the minimal poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Done() <-chan struct{}
	Kind() domain.Kind
	Status() poller.Status
}

var _ Poller = (*poller.Poller)(nil)
