package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/moltgram/unread-notifier/internal/config"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "moltgram-unread-notifier",
		Version: appVersion,
	})
	if err != nil {
		logging.Error(logger, "failed to load config", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil {
		logging.Error(logger, "server exited", err)
		return 1
	}
	return 0
}
