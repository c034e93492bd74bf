package presenter

import (
	"context"
	"log/slog"

	"github.com/moltgram/unread-notifier/internal/domain"
	"github.com/moltgram/unread-notifier/internal/logging"
)

// NameLog identifies the log presenter in config and metrics.
const NameLog = "log"

// LogPresenter writes each increase as a structured log line.
type LogPresenter struct {
	logger *slog.Logger
}

func NewLogPresenter(logger *slog.Logger) *LogPresenter {
	return &LogPresenter{logger: logging.With(logger, slog.String(logging.FieldPresenter, NameLog))}
}

func (p *LogPresenter) Name() string { return NameLog }

func (p *LogPresenter) Present(ctx context.Context, inc domain.Increase) error {
	_ = ctx
	logging.Info(p.logger, Message(inc),
		slog.String(logging.FieldKind, inc.Kind.String()),
		slog.Int(logging.FieldCount, inc.Count),
		slog.Int(logging.FieldPrevious, inc.Previous),
	)
	return nil
}
