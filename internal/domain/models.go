package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which unread counter a poller tracks.
type Kind string

const (
	KindNotifications Kind = "notifications"
	KindMessages      Kind = "messages"
)

// ErrUnknownKind is returned when a kind string is not one of the supported counters.
var ErrUnknownKind = errors.New("unknown unread kind")

// Kinds lists every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindNotifications, KindMessages}
}

// ParseKind normalizes and validates a kind name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindNotifications:
		return KindNotifications, nil
	case KindMessages:
		return KindMessages, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return k == KindNotifications || k == KindMessages
}

func (k Kind) String() string { return string(k) }

// NoCount is the sentinel for "not yet fetched".
const NoCount = -1

// Increase is emitted when an unread count grows past an established baseline.
type Increase struct {
	Kind     Kind      `json:"kind"`
	Count    int       `json:"count"`
	Previous int       `json:"previous"`
	At       time.Time `json:"at"`
}

// Delta returns how many new items arrived.
func (i Increase) Delta() int {
	return i.Count - i.Previous
}

// CountResponse is the body served by the unread-count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}
