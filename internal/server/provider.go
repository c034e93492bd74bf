package server

import (
	"log/slog"
	"net/http"

	"github.com/moltgram/unread-notifier/internal/config"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/providers"
	"github.com/moltgram/unread-notifier/internal/providers/fixture"
	"github.com/moltgram/unread-notifier/internal/providers/moltgram"
)

const (
	providerMoltGram = "moltgram"
	providerFixture  = "fixture"
)

// selectProvider returns the boundary client and the name it reports under.
func selectProvider(cfg config.Config, logger *slog.Logger) (providers.CountProvider, string) {
	switch cfg.Provider {
	case providerMoltGram, "":
		return moltgram.NewClient(moltgram.Config{
			BaseURL:           cfg.MoltGram.BaseURL,
			Token:             cfg.MoltGram.Token,
			NotificationsPath: cfg.MoltGram.NotificationsPath,
			MessagesPath:      cfg.MoltGram.MessagesPath,
			CountField:        cfg.MoltGram.CountField,
			HTTPClient:        &http.Client{Timeout: cfg.MoltGram.Timeout},
		}), providerMoltGram
	case providerFixture:
		return fixture.New(nil), providerFixture
	default:
		logging.Warn(logger, "unknown provider, falling back to fixture", slog.String(logging.FieldProvider, cfg.Provider))
		return fixture.New(nil), providerFixture
	}
}
