// Package visibility tracks whether the viewer is currently looking at MoltGram
// and wakes subscribers when that changes.
package visibility

import "sync"

// Source is the read side pollers depend on.
type Source interface {
	Visible() bool
	// Subscribe returns a channel that receives a wake-up after every change, and a cancel func.
	// Wake-ups coalesce: readers must call Visible to learn the current state.
	Subscribe() (<-chan struct{}, func())
}

// Observer is a settable Source safe for concurrent use.
type Observer struct {
	mu      sync.Mutex
	visible bool
	nextID  int
	subs    map[int]chan struct{}
}

// New returns an Observer starting in the given state.
func New(visible bool) *Observer {
	return &Observer{
		visible: visible,
		subs:    make(map[int]chan struct{}),
	}
}

// Visible reports the current state.
func (o *Observer) Visible() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visible
}

// Set updates the state and wakes subscribers. It reports whether the state changed.
func (o *Observer) Set(visible bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.visible == visible {
		return false
	}
	o.visible = visible
	for _, ch := range o.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return true
}

// Subscribe registers a wake-up channel. The cancel func is idempotent.
func (o *Observer) Subscribe() (<-chan struct{}, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	ch := make(chan struct{}, 1)
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (o *Observer) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Static returns a Source pinned to one state that never wakes anyone.
func Static(visible bool) Source {
	return staticSource(visible)
}

type staticSource bool

func (s staticSource) Visible() bool { return bool(s) }

func (s staticSource) Subscribe() (<-chan struct{}, func()) {
	return nil, func() {}
}
