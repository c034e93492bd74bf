package providers

import (
	"errors"
	"fmt"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// ErrFetchFailed is the single outcome every unread-count failure unwraps to.
var ErrFetchFailed = errors.New("unread count fetch failed")

// Reason records why a fetch failed. It is informational only; callers back off identically.
type Reason string

const (
	ReasonNetwork   Reason = "network"
	ReasonStatus    Reason = "status"
	ReasonMalformed Reason = "malformed"
)

// FetchError describes a failed unread-count fetch.
type FetchError struct {
	Kind       domain.Kind
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s unread count: %s", e.Kind, e.Reason)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the fetch-failed sentinel and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// AsFetchError attempts to unwrap an error into a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
