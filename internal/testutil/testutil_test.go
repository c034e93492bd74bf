package testutil

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
)

func TestNowAt(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
}

func TestFakeClockFiresDueTimers(t *testing.T) {
	clock := NewFakeClock(SampleTime)
	short := clock.NewTimer(time.Second)
	long := clock.NewTimer(time.Minute)

	clock.Advance(2 * time.Second)
	select {
	case at := <-short.C():
		if !at.Equal(SampleTime.Add(2 * time.Second)) {
			t.Fatalf("unexpected fire time %v", at)
		}
	default:
		t.Fatalf("expected short timer to fire")
	}
	select {
	case <-long.C():
		t.Fatalf("long timer fired early")
	default:
	}

	if clock.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", clock.Pending())
	}
	if !long.Stop() || long.Stop() {
		t.Fatalf("expected first stop to succeed and second to report already stopped")
	}
	clock.Advance(time.Hour)
	select {
	case <-long.C():
		t.Fatalf("stopped timer fired")
	default:
	}

	want := []time.Duration{time.Second, time.Minute}
	got := clock.Delays()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected delays %v, got %v", want, got)
	}
	if !clock.Now().Equal(SampleTime.Add(time.Hour + 2*time.Second)) {
		t.Fatalf("unexpected now %v", clock.Now())
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := NewFakeClock(SampleTime)
	if clock.WaitForTimers(1, 10*time.Millisecond) {
		t.Fatalf("expected timeout with no timers")
	}
	go clock.NewTimer(time.Second)
	if !clock.WaitForTimers(1, time.Second) {
		t.Fatalf("expected timer to be observed")
	}
}

func TestFixtures(t *testing.T) {
	inc := SampleIncrease(domain.KindMessages, 5, 3)
	if inc.Delta() != 2 || !inc.At.Equal(SampleTime) {
		t.Fatalf("unexpected increase fixture %+v", inc)
	}
	if got := CountBody(7); got != `{"count":7}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := ServeJSON(handler, http.MethodPost, "/test", "{}")
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}
}

func TestStubHTTPServerBlocksUntilShutdown(t *testing.T) {
	s := NewStubHTTPServer(":1234", http.NewServeMux())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe() }()

	select {
	case <-done:
		t.Fatalf("expected ListenAndServe to block")
	case <-time.After(10 * time.Millisecond):
	}
	_ = s.Shutdown(context.Background())
	_ = s.Shutdown(context.Background())
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected ErrServerClosed, got %v", err)
	}
	if s.ListenCalls() != 1 || s.ShutdownCalls() != 2 || s.Addr() != ":1234" || s.Handler() == nil {
		t.Fatalf("unexpected stub state")
	}
}

func TestOtherServerStubs(t *testing.T) {
	sh := &StubHTTPServer{ListenErr: errors.New("boom")}
	if err := sh.ListenAndServe(); err == nil {
		t.Fatalf("expected listen error")
	}

	b := &BlockingHTTPServer{Unblock: make(chan struct{}), AddrVal: ":1"}
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}
	if b.ShutdownCalls() != 1 || b.Addr() != ":1" {
		t.Fatalf("unexpected blocking server state")
	}

	e := &ErrHTTPServer{}
	if err := e.ListenAndServe(); !errors.Is(err, ErrListen) {
		t.Fatalf("expected ErrListen, got %v", err)
	}
	_ = e.Shutdown(context.Background())
	if e.ShutdownCalls() != 1 || e.Addr() == "" || e.Handler() == nil {
		t.Fatalf("unexpected err server state")
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil shutdown error, got %v", err)
	}
}
