package moltgram

import (
	"net/http"
	"strings"

	"github.com/moltgram/unread-notifier/internal/domain"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func resolveHTTPClient(client *http.Client) httpDoer {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}

func normalizePath(raw, fallback string) string {
	if raw == "" {
		raw = fallback
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}

func resolvePaths(notifications, messages string) map[domain.Kind]string {
	return map[domain.Kind]string{
		domain.KindNotifications: normalizePath(notifications, defaultNotificationsPath),
		domain.KindMessages:      normalizePath(messages, defaultMessagesPath),
	}
}

func resolveCountField(field string) string {
	if field = strings.TrimSpace(field); field == "" {
		return defaultCountField
	}
	return field
}
