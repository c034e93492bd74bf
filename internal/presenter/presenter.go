// Package presenter surfaces unread-count increases to the viewer.
package presenter

import (
	"context"
	"fmt"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// Presenter renders one increase. Implementations must be safe to call from the dispatcher worker.
type Presenter interface {
	Name() string
	Present(ctx context.Context, inc domain.Increase) error
}

// PresenterFunc adapts a function into a Presenter.
type PresenterFunc struct {
	ID string
	Fn func(ctx context.Context, inc domain.Increase) error
}

func (f PresenterFunc) Name() string { return f.ID }

func (f PresenterFunc) Present(ctx context.Context, inc domain.Increase) error {
	return f.Fn(ctx, inc)
}

const title = "MoltGram"

// Message renders the toast line for inc, e.g. "2 new messages (5 unread)".
func Message(inc domain.Increase) string {
	delta := inc.Delta()
	noun := string(inc.Kind)
	if delta == 1 {
		noun = singular(inc.Kind)
	}
	return fmt.Sprintf("%d new %s (%d unread)", delta, noun, inc.Count)
}

func singular(kind domain.Kind) string {
	switch kind {
	case domain.KindNotifications:
		return "notification"
	case domain.KindMessages:
		return "message"
	default:
		return string(kind)
	}
}
