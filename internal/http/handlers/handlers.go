package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"strings"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/http/requestutil"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/poller"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 500
	maxBodyBytes       = 1 << 10
)

// StatusSource is the read side of a poller.
type StatusSource interface {
	Kind() domain.Kind
	Status() poller.Status
}

// VisibilityControl reads and flips the shared visibility state.
type VisibilityControl interface {
	Visible() bool
	Set(visible bool) bool
}

// History serves recent increases, newest first.
type History interface {
	Recent(limit int) []domain.Increase
}

// Handler wires HTTP routes to the pollers, visibility and history.
type Handler struct {
	pollers    []StatusSource
	visibility VisibilityControl
	history    History
	logger     *slog.Logger
}

// NewHandler constructs a Handler. Any dependency may be nil; the matching routes then degrade.
func NewHandler(pollers []StatusSource, visibility VisibilityControl, history History, logger *slog.Logger) *Handler {
	return &Handler{
		pollers:    pollers,
		visibility: visibility,
		history:    history,
		logger:     logger,
	}
}

// ServeHTTP dispatches without a mux, mirroring the router's table.
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch {
	case r.URL.Path == "/health":
		h.Health(w, r)
	case r.URL.Path == "/ready":
		h.Ready(w, r)
	case r.URL.Path == "/unread":
		h.Unread(w, r)
	case strings.HasPrefix(r.URL.Path, "/unread/"):
		h.UnreadByKind(w, r)
	case r.URL.Path == "/visibility":
		h.Visibility(w, r)
	case r.URL.Path == "/events":
		h.Events(w, r)
	default:
		writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready is 200 once every poller has fetched successfully and none is failing repeatedly.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	for _, p := range h.pollers {
		status := p.Status()
		if status.IsReady() {
			continue
		}
		msg := status.LastError
		if msg == "" {
			msg = "not ready"
		}
		writeError(w, r, nethttp.StatusServiceUnavailable, status.Kind.String()+": "+msg, h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// Unread lists every poller's status.
func (h *Handler) Unread(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	resp := UnreadResponse{
		Visible: h.visible(),
		Kinds:   make([]KindStatus, 0, len(h.pollers)),
	}
	for _, p := range h.pollers {
		resp.Kinds = append(resp.Kinds, newKindStatus(p.Status()))
	}
	writeJSON(w, nethttp.StatusOK, resp, h.logger)
}

// UnreadByKind returns one poller's status: /unread/{kind}.
func (h *Handler) UnreadByKind(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	kind, err := domain.ParseKind(strings.TrimPrefix(r.URL.Path, "/unread/"))
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return
	}
	for _, p := range h.pollers {
		if p.Kind() == kind {
			writeJSON(w, nethttp.StatusOK, newKindStatus(p.Status()), h.logger)
			return
		}
	}
	writeError(w, r, nethttp.StatusNotFound, "kind not polled", h.logger)
}

// Visibility reports the state on GET and updates it on PUT or POST.
func (h *Handler) Visibility(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.visibility == nil {
		writeError(w, r, nethttp.StatusNotImplemented, "visibility not configured", h.logger)
		return
	}
	switch r.Method {
	case nethttp.MethodGet:
		writeJSON(w, nethttp.StatusOK, VisibilityResponse{Visible: h.visibility.Visible()}, h.logger)
	case nethttp.MethodPut, nethttp.MethodPost:
		visible, err := decodeVisibility(r.Body)
		if err != nil {
			writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
			return
		}
		changed := h.visibility.Set(visible)
		if changed {
			logging.Info(loggerFromContext(r, h.logger), "visibility changed", slog.Bool(logging.FieldVisible, visible))
		}
		writeJSON(w, nethttp.StatusOK, VisibilityResponse{Visible: visible, Changed: changed}, h.logger)
	default:
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
	}
}

// Events returns recent increases, newest first: /events?limit=n.
func (h *Handler) Events(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	limit, err := requestutil.IntQuery(r, "limit", defaultEventsLimit, maxEventsLimit)
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "limit must be a positive integer", h.logger)
		return
	}
	events := []domain.Increase{}
	if h.history != nil {
		events = append(events, h.history.Recent(limit)...)
	}
	writeJSON(w, nethttp.StatusOK, EventsResponse{Events: events}, h.logger)
}

func (h *Handler) visible() bool {
	if h.visibility == nil {
		return true
	}
	return h.visibility.Visible()
}

var errVisibleRequired = errors.New(`body must be {"visible": true|false}`)

func decodeVisibility(body io.Reader) (bool, error) {
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&req); err != nil || req.Visible == nil {
		return false, errVisibleRequired
	}
	return *req.Visible, nil
}
