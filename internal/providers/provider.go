package providers

import (
	"context"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// CountProvider fetches the current unread count for one kind.
// Implementations return an error for any transport failure, non-2xx status, or unreadable body;
// callers treat every error identically.
type CountProvider interface {
	FetchCount(ctx context.Context, kind domain.Kind) (int, error)
}

// ProviderFunc adapts a function to CountProvider.
type ProviderFunc func(ctx context.Context, kind domain.Kind) (int, error)

func (f ProviderFunc) FetchCount(ctx context.Context, kind domain.Kind) (int, error) {
	return f(ctx, kind)
}
