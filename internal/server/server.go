package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/moltgram/unread-notifier/internal/config"
	"github.com/moltgram/unread-notifier/internal/domain"
	httpserver "github.com/moltgram/unread-notifier/internal/http"
	"github.com/moltgram/unread-notifier/internal/http/handlers"
	"github.com/moltgram/unread-notifier/internal/http/middleware"
	"github.com/moltgram/unread-notifier/internal/logging"
	"github.com/moltgram/unread-notifier/internal/metrics"
	"github.com/moltgram/unread-notifier/internal/poller"
	"github.com/moltgram/unread-notifier/internal/presenter"
	"github.com/moltgram/unread-notifier/internal/providers"
	"github.com/moltgram/unread-notifier/internal/store"
	"github.com/moltgram/unread-notifier/internal/visibility"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	history       *store.MemoryStore
	visibility    *visibility.Observer
	dispatcher    *presenter.Dispatcher
	pollers       []Poller
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server with the configured provider and presenters.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServer(cfg, logger, nil, nil, nil)
}

// newServer lets tests inject the provider, presenters and recorder. Nil values use the config.
func newServer(cfg config.Config, logger *slog.Logger, provider providers.CountProvider, presenters []presenter.Presenter, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	factory := newProviderFactory(logger, recorder)
	if provider == nil {
		provider = factory.build(cfg)
	} else {
		provider = factory.wrap(provider, "injected")
	}
	if presenters == nil {
		presenters = buildPresenters(cfg.Presenters, logger)
	}

	history := store.NewMemoryStore(cfg.Presenters.HistorySize)
	obs := visibility.New(cfg.StartVisible)
	dispatcher := presenter.NewDispatcher(presenters, history, cfg.Presenters.QueueSize, logger, recorder)

	pollers := make([]Poller, 0, len(domain.Kinds()))
	sources := make([]handlers.StatusSource, 0, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		p := poller.New(kind, provider, obs, dispatcher.Handle, logger, recorder)
		pollers = append(pollers, p)
		sources = append(sources, p)
	}

	handler := handlers.NewHandler(sources, obs, history, logger)
	httpSrv := buildHTTPServer(cfg, handler, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		history:       history,
		visibility:    obs,
		dispatcher:    dispatcher,
		pollers:       pollers,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

func buildHTTPServer(cfg config.Config, handler *handlers.Handler, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, httpserver.NewRouter(handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts pollers, presenters and servers, then blocks until ctx is cancelled or a server
// fails. Shutdown is graceful in both cases. The returned error is the server failure, if any.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// Deliveries queued before shutdown still get a chance to drain.
	s.dispatcher.Start(context.WithoutCancel(ctx))
	for _, p := range s.pollers {
		p.Start(gctx)
	}

	g.Go(func() error { return serve("http", s.httpServer, s.logger) })
	if s.metricsServer != nil {
		g.Go(func() error { return serve("metrics", s.metricsServer, s.logger) })
	}
	g.Go(func() error {
		watchVisibilitySignals(gctx, s.visibility, s.logger)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info(s.logger, "shutdown signal received")
		s.gracefulShutdown()
		return nil
	})

	return g.Wait()
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, p := range s.pollers {
		if err := p.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop poller", err, slog.String(logging.FieldKind, p.Kind().String()))
		}
	}
	for _, p := range s.pollers {
		select {
		case <-p.Done():
		case <-shutdownCtx.Done():
			logging.Warn(s.logger, "poller did not exit before shutdown deadline", slog.String(logging.FieldKind, p.Kind().String()))
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if err := s.dispatcher.Close(shutdownCtx); err != nil {
		logging.Warn(s.logger, "presenter queue not drained", "error", err)
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           mux,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

// serve runs srv until it is shut down. Any other exit is returned so the group cancels.
func serve(name string, srv httpServer, logger *slog.Logger) error {
	logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Warn(logger, name+" server failed", "error", err)
		return err
	}
	return nil
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Visibility exposes the shared visibility state.
func (s *Server) Visibility() *visibility.Observer {
	return s.visibility
}
