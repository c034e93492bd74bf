package config

import (
	"strings"
	"time"
)

// Config holds runtime configuration for the notifier.
type Config struct {
	Port         string
	Provider     string
	StartVisible bool
	MoltGram     MoltGramConfig
	Presenters   PresentersConfig
	Metrics      MetricsConfig
	Log          LogConfig
}

// MoltGramConfig controls how the unread-count endpoints are reached.
type MoltGramConfig struct {
	BaseURL           string
	Token             string
	NotificationsPath string
	MessagesPath      string
	CountField        string
	Timeout           time.Duration
}

// PresentersConfig selects how increases are surfaced.
type PresentersConfig struct {
	Enabled     []string
	WebhookURL  string
	WebhookRate int // deliveries per second
	QueueSize   int
	HistorySize int
}

// LogConfig is passed to logging.NewLogger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads the optional CONFIG_FILE, then applies environment overrides on top.
// Unset values fall back to built-in defaults.
func Load() (Config, error) {
	var file fileConfig
	if path := envOrDefault(envConfigFile, ""); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}
	return fromSources(file), nil
}

func fromSources(f fileConfig) Config {
	return Config{
		Port:         envOrDefault(envPort, orString(f.Port, defaultPort)),
		Provider:     strings.ToLower(envOrDefault(envProvider, orString(f.Provider, defaultProvider))),
		StartVisible: boolEnvOrDefault(envStartVisible, orBool(f.StartVisible, defaultStartVisible)),
		MoltGram:     loadMoltGram(f.MoltGram),
		Presenters:   loadPresenters(f.Presenters),
		Metrics:      loadMetrics(f.Metrics),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, orString(f.Log.Level, defaultLogLevel)),
			Format: envOrDefault(envLogFormat, orString(f.Log.Format, defaultLogFormat)),
		},
	}
}

func loadMoltGram(f moltgramFile) MoltGramConfig {
	return MoltGramConfig{
		BaseURL:           envOrDefault(envBaseURL, orString(f.BaseURL, defaultBaseURL)),
		Token:             envOrDefault(envToken, f.Token),
		NotificationsPath: envOrDefault(envNotificationsPath, orString(f.NotificationsPath, defaultNotificationsPath)),
		MessagesPath:      envOrDefault(envMessagesPath, orString(f.MessagesPath, defaultMessagesPath)),
		CountField:        envOrDefault(envCountField, orString(f.CountField, defaultCountField)),
		Timeout:           durationEnvOrDefault(envHTTPTimeout, orDuration(f.Timeout, defaultHTTPTimeout)),
	}
}

func loadPresenters(f presentersFile) PresentersConfig {
	enabled := f.Enabled
	if len(enabled) == 0 {
		enabled = splitList(defaultPresenters)
	}
	return PresentersConfig{
		Enabled:     listEnvOrDefault(envPresenters, enabled),
		WebhookURL:  envOrDefault(envWebhookURL, f.WebhookURL),
		WebhookRate: intEnvOrDefault(envWebhookRate, orInt(f.WebhookRate, defaultWebhookRate)),
		QueueSize:   intEnvOrDefault(envQueueSize, orInt(f.QueueSize, defaultQueueSize)),
		HistorySize: intEnvOrDefault(envHistorySize, orInt(f.HistorySize, defaultHistorySize)),
	}
}

// HasPresenter reports whether name is in the enabled presenter list.
func (p PresentersConfig) HasPresenter(name string) bool {
	for _, enabled := range p.Enabled {
		if strings.EqualFold(enabled, name) {
			return true
		}
	}
	return false
}
