package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// fileConfig mirrors Config for the optional YAML file. Pointers distinguish "unset" from zero values.
type fileConfig struct {
	Port         string         `yaml:"port"`
	Provider     string         `yaml:"provider"`
	StartVisible *bool          `yaml:"start_visible"`
	MoltGram     moltgramFile   `yaml:"moltgram"`
	Presenters   presentersFile `yaml:"presenters"`
	Metrics      metricsFile    `yaml:"metrics"`
	Log          logFile        `yaml:"log"`
}

type moltgramFile struct {
	BaseURL           string        `yaml:"base_url"`
	Token             string        `yaml:"token"`
	NotificationsPath string        `yaml:"notifications_path"`
	MessagesPath      string        `yaml:"messages_path"`
	CountField        string        `yaml:"count_field"`
	Timeout           time.Duration `yaml:"timeout"`
}

type presentersFile struct {
	Enabled     []string `yaml:"enabled"`
	WebhookURL  string   `yaml:"webhook_url"`
	WebhookRate int      `yaml:"webhook_rate"`
	QueueSize   int      `yaml:"queue_size"`
	HistorySize int      `yaml:"history_size"`
}

type metricsFile struct {
	Enabled      *bool  `yaml:"enabled"`
	Port         string `yaml:"port"`
	OtlpEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
	OtlpInsecure *bool  `yaml:"otlp_insecure"`
}

type logFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func readFile(path string) (fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func orString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orBool(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func orDuration(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
