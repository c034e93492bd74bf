package timeutil

import "time"

// Clock abstracts the time source so schedulers can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer schedulers use.
type Timer interface {
	C() <-chan time.Time
	// Stop prevents the timer from firing. It reports whether the call stopped it.
	Stop() bool
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer {
	return realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

// Millis renders d as whole milliseconds for logs and JSON payloads.
func Millis(d time.Duration) int64 {
	return d.Milliseconds()
}
