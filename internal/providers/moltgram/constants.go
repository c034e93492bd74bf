package moltgram

import "time"

const (
	defaultBaseURL           = "http://localhost:3000"
	defaultNotificationsPath = "/api/notifications/unread-count"
	defaultMessagesPath      = "/api/messages/unread-count"
	defaultCountField        = "count"
	defaultHTTPTimeout       = 10 * time.Second

	// Bodies are a single small JSON object; anything larger is not an unread-count response.
	maxBodyBytes = 64 << 10
)
