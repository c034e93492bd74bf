package server

import (
	"log/slog"

	"github.com/moltgram/unread-notifier/internal/config"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/presenter"
)

// buildPresenters instantiates every enabled presenter in config order. Unknown names and a
// webhook without a URL are skipped with a warning; an empty result falls back to the log presenter.
func buildPresenters(cfg config.PresentersConfig, logger *slog.Logger) []presenter.Presenter {
	var out []presenter.Presenter
	seen := make(map[string]bool)
	for _, name := range cfg.Enabled {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case presenter.NameLog:
			out = append(out, presenter.NewLogPresenter(logger))
		case presenter.NameDesktop:
			out = append(out, presenter.NewDesktopPresenter())
		case presenter.NameWebhook:
			p, err := presenter.NewWebhookPresenter(cfg.WebhookURL, cfg.WebhookRate, nil)
			if err != nil {
				logging.Warn(logger, "webhook presenter disabled", "error", err)
				continue
			}
			out = append(out, p)
		default:
			logging.Warn(logger, "unknown presenter ignored", slog.String(logging.FieldPresenter, name))
		}
	}
	if len(out) == 0 {
		out = append(out, presenter.NewLogPresenter(logger))
	}
	return out
}
