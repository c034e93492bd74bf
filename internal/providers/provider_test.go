package providers

import (
	"context"
	"testing"

	"github.com/moltgram/unread-notifier/internal/domain"
)

func TestProviderFuncImplementsCountProvider(t *testing.T) {
	var p CountProvider = ProviderFunc(func(ctx context.Context, kind domain.Kind) (int, error) {
		if kind == domain.KindMessages {
			return 4, nil
		}
		return 1, nil
	})

	got, err := p.FetchCount(context.Background(), domain.KindMessages)
	if err != nil || got != 4 {
		t.Fatalf("expected 4, got %d (%v)", got, err)
	}
}
