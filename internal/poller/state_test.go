package poller

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func TestNextDelay(t *testing.T) {
	cases := []struct {
		name    string
		visible bool
		retry   time.Duration
		want    time.Duration
	}{
		{name: "visible healthy", visible: true, want: 15 * time.Second},
		{name: "hidden healthy", visible: false, want: 60 * time.Second},
		{name: "visible short backoff floors at base", visible: true, retry: 8 * time.Second, want: 15 * time.Second},
		{name: "visible long backoff wins", visible: true, retry: 32 * time.Second, want: 32 * time.Second},
		{name: "hidden backoff below base", visible: false, retry: 32 * time.Second, want: 60 * time.Second},
		{name: "hidden capped backoff", visible: false, retry: 120 * time.Second, want: 120 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextDelay(tc.visible, tc.retry); got != tc.want {
				t.Fatalf("nextDelay(%v, %s) = %s, want %s", tc.visible, tc.retry, got, tc.want)
			}
		})
	}
}

func TestBackoffDoublesFromTwoSecondsAndCaps(t *testing.T) {
	b := newBackoff()
	for n := 1; n <= 10; n++ {
		want := min(time.Duration(1<<n)*time.Second, backoffMax)
		got := b.NextBackOff()
		if got == backoff.Stop {
			t.Fatalf("failure %d: back-off gave up", n)
		}
		if got != want {
			t.Fatalf("failure %d: expected %s, got %s", n, want, got)
		}
	}

	b.Reset()
	if got := b.NextBackOff(); got != backoffInitial {
		t.Fatalf("expected reset to restart at %s, got %s", backoffInitial, got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateScheduled:  "scheduled",
		StateFetching:   "fetching",
		StateTerminated: "terminated",
		State(42):       "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestStatusIsReady(t *testing.T) {
	now := time.Now()
	if (Status{}).IsReady() {
		t.Fatalf("expected not ready before any success")
	}
	if !(Status{LastSuccess: now, ConsecutiveFailures: 2}).IsReady() {
		t.Fatalf("expected ready with a short failure streak")
	}
	if (Status{LastSuccess: now, ConsecutiveFailures: 3}).IsReady() {
		t.Fatalf("expected not ready after three failures")
	}
}

func TestStatusJSONRendersStateName(t *testing.T) {
	body, err := json.Marshal(Status{Kind: "messages", State: StateScheduled, Count: 4, NextDelay: time.Minute})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"state":"scheduled"`) {
		t.Fatalf("expected state name in %s", body)
	}
	if strings.Contains(string(body), "NextDelay") {
		t.Fatalf("expected NextDelay omitted from %s", body)
	}
	if got := (Status{NextDelay: 1500 * time.Millisecond}).NextDelayMS(); got != 1500 {
		t.Fatalf("expected 1500ms, got %d", got)
	}
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	if err := s.UnmarshalText([]byte("fetching")); err != nil || s != StateFetching {
		t.Fatalf("expected fetching, got %s (%v)", s, err)
	}
	if err := s.UnmarshalText([]byte("sleeping")); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}
