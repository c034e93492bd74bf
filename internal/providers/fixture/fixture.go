package fixture

import (
	"context"
	"sync"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// Provider replays a scripted sequence of counts per kind for local runs without a MoltGram instance.
// Once a script is exhausted its last value repeats.
type Provider struct {
	mu      sync.Mutex
	scripts map[domain.Kind][]int
	pos     map[domain.Kind]int
}

// DefaultScripts grows both counters slowly so presenters have something to show.
func DefaultScripts() map[domain.Kind][]int {
	return map[domain.Kind][]int{
		domain.KindNotifications: {0, 0, 1, 1, 3, 2, 4},
		domain.KindMessages:      {1, 1, 1, 2, 2, 0, 1},
	}
}

// New creates a fixture provider. A nil map uses DefaultScripts.
func New(scripts map[domain.Kind][]int) *Provider {
	if scripts == nil {
		scripts = DefaultScripts()
	}
	copied := make(map[domain.Kind][]int, len(scripts))
	for kind, seq := range scripts {
		copied[kind] = append([]int(nil), seq...)
	}
	return &Provider{
		scripts: copied,
		pos:     make(map[domain.Kind]int),
	}
}

// FetchCount returns the next scripted count for kind, or 0 when no script exists.
func (p *Provider) FetchCount(ctx context.Context, kind domain.Kind) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.scripts[kind]
	if len(seq) == 0 {
		return 0, nil
	}
	i := p.pos[kind]
	if i >= len(seq) {
		return seq[len(seq)-1], nil
	}
	p.pos[kind] = i + 1
	return seq[i], nil
}
