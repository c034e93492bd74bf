package http

import (
	nethttp "net/http"

	"github.com/moltgram/unread-notifier/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/unread", handler.Unread)
	mux.HandleFunc("/unread/", handler.UnreadByKind)
	mux.HandleFunc("/visibility", handler.Visibility)
	mux.HandleFunc("/events", handler.Events)
	return mux
}
