package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/poller"
	"github.com/moltgram/unread-notifier/internal/store"
	"github.com/moltgram/unread-notifier/internal/testutil"
	"github.com/moltgram/unread-notifier/internal/visibility"
)

type stubPoller struct {
	status poller.Status
}

func (s stubPoller) Kind() domain.Kind     { return s.status.Kind }
func (s stubPoller) Status() poller.Status { return s.status }

func readyStatus(kind domain.Kind, count int) poller.Status {
	return poller.Status{
		Kind:        kind,
		State:       poller.StateScheduled,
		Count:       count,
		LastSuccess: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		NextDelay:   15 * time.Second,
		Visible:     true,
	}
}

func newTestHandler(statuses ...poller.Status) (*Handler, *visibility.Observer, *store.MemoryStore) {
	sources := make([]StatusSource, 0, len(statuses))
	for _, s := range statuses {
		sources = append(sources, stubPoller{status: s})
	}
	vis := visibility.New(true)
	history := store.NewMemoryStore(10)
	return NewHandler(sources, vis, history, nil), vis, history
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := testutil.Serve(h, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp ErrorResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Error != "shutting down" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestReadyWhenEveryPollerHealthy(t *testing.T) {
	h, _, _ := newTestHandler(readyStatus(domain.KindNotifications, 1), readyStatus(domain.KindMessages, 2))

	rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestReadyReportsFailingPoller(t *testing.T) {
	failing := readyStatus(domain.KindMessages, 2)
	failing.ConsecutiveFailures = 3
	failing.LastError = "fetch messages unread count: network"
	h, _, _ := newTestHandler(readyStatus(domain.KindNotifications, 1), failing)

	rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp ErrorResponse
	testutil.DecodeJSON(t, rr, &resp)
	if !strings.HasPrefix(resp.Error, "messages: fetch messages") {
		t.Fatalf("expected failing kind and error, got %q", resp.Error)
	}
}

func TestReadyBeforeFirstSuccess(t *testing.T) {
	h, _, _ := newTestHandler(poller.Status{Kind: domain.KindNotifications, Count: domain.NoCount})

	rr := testutil.Serve(h, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp ErrorResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Error != "notifications: not ready" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestUnreadListsEveryKind(t *testing.T) {
	h, vis, _ := newTestHandler(readyStatus(domain.KindNotifications, 1), readyStatus(domain.KindMessages, 4))
	vis.Set(false)

	rr := testutil.Serve(h, http.MethodGet, "/unread", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp UnreadResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Visible {
		t.Fatalf("expected hidden visibility reported")
	}
	if len(resp.Kinds) != 2 || resp.Kinds[1].Kind != domain.KindMessages || resp.Kinds[1].Count != 4 {
		t.Fatalf("unexpected kinds %+v", resp.Kinds)
	}
	if resp.Kinds[0].NextDelayMS != 15000 || !resp.Kinds[0].Ready || resp.Kinds[0].State != poller.StateScheduled {
		t.Fatalf("unexpected status view %+v", resp.Kinds[0])
	}
}

func TestUnreadJSONShape(t *testing.T) {
	h, _, _ := newTestHandler(readyStatus(domain.KindMessages, 4))

	rr := testutil.Serve(h, http.MethodGet, "/unread", nil)
	body := rr.Body.String()
	for _, want := range []string{`"kind":"messages"`, `"state":"scheduled"`, `"count":4`, `"nextDelayMs":15000`, `"consecutiveFailures":0`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestUnreadByKind(t *testing.T) {
	h, _, _ := newTestHandler(readyStatus(domain.KindNotifications, 1), readyStatus(domain.KindMessages, 4))

	rr := testutil.Serve(h, http.MethodGet, "/unread/Messages", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp KindStatus
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Kind != domain.KindMessages || resp.Count != 4 {
		t.Fatalf("unexpected status %+v", resp)
	}
}

func TestUnreadByKindErrors(t *testing.T) {
	h, _, _ := newTestHandler(readyStatus(domain.KindNotifications, 1))

	cases := map[string]int{
		"/unread/likes":    http.StatusBadRequest,
		"/unread/":         http.StatusBadRequest,
		"/unread/messages": http.StatusNotFound,
	}
	for path, want := range cases {
		rr := testutil.Serve(h, http.MethodGet, path, nil)
		if rr.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rr.Code)
		}
	}
}

func TestVisibilityGetAndSet(t *testing.T) {
	h, vis, _ := newTestHandler()

	rr := testutil.Serve(h, http.MethodGet, "/visibility", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var got VisibilityResponse
	testutil.DecodeJSON(t, rr, &got)
	if !got.Visible {
		t.Fatalf("expected visible by default")
	}

	rr = testutil.ServeJSON(h, http.MethodPut, "/visibility", `{"visible":false}`)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &got)
	if got.Visible || !got.Changed || vis.Visible() {
		t.Fatalf("expected visibility flipped to hidden, got %+v", got)
	}

	rr = testutil.ServeJSON(h, http.MethodPost, "/visibility", `{"visible":false}`)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &got)
	if got.Changed {
		t.Fatalf("expected repeated state to report unchanged")
	}
}

func TestVisibilityRejectsBadBodies(t *testing.T) {
	h, vis, _ := newTestHandler()

	for _, body := range []string{"", "{}", `{"visible":"yes"}`, "not json"} {
		rr := testutil.Serve(h, http.MethodPut, "/visibility", strings.NewReader(body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
	if !vis.Visible() {
		t.Fatalf("expected visibility untouched by bad requests")
	}

	rr := testutil.Serve(h, http.MethodDelete, "/visibility", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestVisibilityNotConfigured(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/visibility", nil)
	testutil.AssertStatus(t, rr, http.StatusNotImplemented)

	rr = testutil.Serve(h, http.MethodGet, "/unread", nil)
	var resp UnreadResponse
	testutil.DecodeJSON(t, rr, &resp)
	if !resp.Visible || len(resp.Kinds) != 0 {
		t.Fatalf("expected visible default with no kinds, got %+v", resp)
	}
}

func TestEventsNewestFirstWithLimit(t *testing.T) {
	h, _, history := newTestHandler()
	for i := 1; i <= 3; i++ {
		history.Add(domain.Increase{Kind: domain.KindMessages, Count: i, Previous: i - 1})
	}

	rr := testutil.Serve(h, http.MethodGet, "/events?limit=2", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp EventsResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Events) != 2 || resp.Events[0].Count != 3 || resp.Events[1].Count != 2 {
		t.Fatalf("unexpected events %+v", resp.Events)
	}

	rr = testutil.Serve(h, http.MethodGet, "/events?limit=zero", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestEventsEmptyHistoryEncodesArray(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil)
	rr := testutil.Serve(h, http.MethodGet, "/events", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), `"events":[]`) {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestReadEndpointsRejectNonGet(t *testing.T) {
	h, _, _ := newTestHandler(readyStatus(domain.KindMessages, 1))
	for _, path := range []string{"/health", "/ready", "/unread", "/unread/messages", "/events"} {
		rr := testutil.Serve(h, http.MethodPost, path, nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", path, rr.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _, _ := newTestHandler()
	rr := testutil.Serve(h, http.MethodGet, "/nope", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}
