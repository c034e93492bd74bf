package config

import "time"

const (
	envConfigFile        = "CONFIG_FILE"
	envPort              = "PORT"
	envProvider          = "PROVIDER"
	envStartVisible      = "START_VISIBLE"
	envBaseURL           = "MOLTGRAM_BASE_URL"
	envToken             = "MOLTGRAM_TOKEN"
	envNotificationsPath = "NOTIFICATIONS_PATH"
	envMessagesPath      = "MESSAGES_PATH"
	envCountField        = "COUNT_FIELD"
	envHTTPTimeout       = "HTTP_TIMEOUT"
	envPresenters        = "PRESENTERS"
	envWebhookURL        = "WEBHOOK_URL"
	envWebhookRate       = "WEBHOOK_RATE"
	envQueueSize         = "PRESENTER_QUEUE_SIZE"
	envHistorySize       = "HISTORY_SIZE"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"

	defaultPort              = "4000"
	defaultProvider          = "moltgram"
	defaultStartVisible      = true
	defaultBaseURL           = "http://localhost:3000"
	defaultNotificationsPath = "/api/notifications/unread-count"
	defaultMessagesPath      = "/api/messages/unread-count"
	defaultCountField        = "count"
	defaultHTTPTimeout       = 10 * time.Second
	defaultPresenters        = "log"

	// One webhook per second keeps bursty increases from flooding the receiver.
	defaultWebhookRate  = 1
	defaultQueueSize    = 64
	defaultHistorySize  = 100
	defaultMetricsPort  = "9090"
	defaultMetricsOn    = true
	defaultServiceName  = "moltgram-unread-notifier"
	defaultOtelInsecure = true
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)
