package poller

import (
	"fmt"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// State is the poller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateFetching
	// StateTerminated is absorbing: no transition leaves it.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateFetching:
		return "fetching"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateIdle, StateScheduled, StateFetching, StateTerminated} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown poller state %q", text)
}

// Status describes the recent health of one poller.
type Status struct {
	Kind                domain.Kind   `json:"kind"`
	State               State         `json:"state"`
	Count               int           `json:"count"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	LastError           string        `json:"lastError,omitempty"`
	LastAttempt         time.Time     `json:"lastAttempt"`
	LastSuccess         time.Time     `json:"lastSuccess"`
	NextDelay           time.Duration `json:"-"`
	Visible             bool          `json:"visible"`
}

// NextDelayMS exposes NextDelay in milliseconds for JSON consumers.
func (s Status) NextDelayMS() int64 {
	return s.NextDelay.Milliseconds()
}

// IsReady reports whether the poller has had a success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}
