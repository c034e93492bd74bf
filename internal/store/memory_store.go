package store

import (
	"sync"

	"github.com/moltgram/unread-notifier/internal/domain"
)

const defaultCapacity = 100

// MemoryStore keeps the most recent increases in a fixed-size ring.
type MemoryStore struct {
	mu     sync.RWMutex
	items  []domain.Increase
	next   int
	filled bool
}

// NewMemoryStore constructs an empty MemoryStore holding at most capacity increases.
// A non-positive capacity falls back to the default.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryStore{
		items: make([]domain.Increase, capacity),
	}
}

// Add records inc, evicting the oldest entry once the ring is full.
func (s *MemoryStore) Add(inc domain.Increase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[s.next] = inc
	s.next = (s.next + 1) % len(s.items)
	if s.next == 0 {
		s.filled = true
	}
}

// Recent returns up to limit increases, newest first. A non-positive limit returns everything held.
func (s *MemoryStore) Recent(limit int) []domain.Increase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.lenLocked()
	if limit <= 0 || limit > size {
		limit = size
	}
	result := make([]domain.Increase, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.items)) % len(s.items)
		result = append(result, s.items[idx])
	}
	return result
}

// Len returns how many increases are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

// Capacity returns the ring size.
func (s *MemoryStore) Capacity() int {
	return len(s.items)
}

func (s *MemoryStore) lenLocked() int {
	if s.filled {
		return len(s.items)
	}
	return s.next
}
