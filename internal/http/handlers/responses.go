package handlers

import (
	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/poller"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// KindStatus is a poller status as served over HTTP.
type KindStatus struct {
	poller.Status
	NextDelayMS int64 `json:"nextDelayMs"`
	Ready       bool  `json:"ready"`
}

func newKindStatus(s poller.Status) KindStatus {
	return KindStatus{Status: s, NextDelayMS: s.NextDelayMS(), Ready: s.IsReady()}
}

type UnreadResponse struct {
	Visible bool         `json:"visible"`
	Kinds   []KindStatus `json:"kinds"`
}

type VisibilityResponse struct {
	Visible bool `json:"visible"`
	Changed bool `json:"changed"`
}

type EventsResponse struct {
	Events []domain.Increase `json:"events"`
}
