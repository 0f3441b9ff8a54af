package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vcell/internal/config"
	"github.com/vango-dev/vcell/internal/errors"
	"github.com/vango-dev/vcell/internal/logging"
	"github.com/vango-dev/vcell/pkg/app"
	"github.com/vango-dev/vcell/pkg/live"
	"github.com/vango-dev/vcell/pkg/observe"
	"github.com/vango-dev/vcell/pkg/signal"
	"github.com/vango-dev/vcell/pkg/store"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cells over HTTP and WebSocket",
		Long: `Serve the cells declared in the config file.

Each cell is available at /cells/{name} (current value) and
/cells/{name}/ws (live stream). Cells marked persist are loaded from and
saved to the configured store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}

			ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a .yaml, .toml or .json config file")

	return cmd
}

// server is everything runServe starts, kept together so shutdown can undo
// it in order.
type server struct {
	app    *app.App
	logger *slog.Logger
	store  store.Store
	hubs   []*live.Hub[any]
	http   *http.Server
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(w, level, cfg.Log.Format)
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		ttl, err := cfg.RedisTTL()
		if err != nil {
			return nil, err
		}
		opts := []store.RedisOption{store.WithTTL(ttl)}
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, store.WithPrefix(cfg.Store.Redis.Prefix))
		}
		r := cfg.Store.Redis
		return store.NewRedis(r.Addr, r.Password, r.DB, opts...), nil
	case config.BackendS3:
		s := cfg.Store.S3
		client := store.NewS3Client(store.S3ClientConfig{
			Region:    s.Region,
			Endpoint:  s.Endpoint,
			PathStyle: s.PathStyle,
		})
		return store.NewS3Store(client, s.Bucket, s.Prefix), nil
	default:
		return nil, nil
	}
}

// newServer builds the app, cells, hubs and router described by cfg. The
// app loop must be running before newServer is called.
func newServer(ctx context.Context, cfg *config.Config, a *app.App, reg *prometheus.Registry, st store.Store) (*server, http.Handler, error) {
	s := &server{app: a, logger: a.Logger(), store: st}

	var routerOpts []live.RouterOption
	routerOpts = append(routerOpts, live.WithRouterLogger(s.logger))
	if reg != nil {
		routerOpts = append(routerOpts, live.WithMetrics(cfg.Metrics.Path,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	bindings := make([]live.Binding, 0, len(cfg.Cells))
	for _, cc := range cfg.Cells {
		hub, err := s.bindCell(ctx, cc)
		if err != nil {
			s.closeHubs(ctx)
			return nil, nil, err
		}
		s.hubs = append(s.hubs, hub)
		bindings = append(bindings, hub)
	}

	return s, live.NewRouter(bindings, routerOpts...), nil
}

func (s *server) bindCell(ctx context.Context, cc config.CellConfig) (*live.Hub[any], error) {
	var cell signal.Mutable[any]
	err := s.app.Loop().Do(ctx, func() error {
		if cc.Initial != nil {
			cell = app.NewCell[any](s.app, cc.Name, cc.Initial)
		} else {
			cell = app.NewUninitCell[any](s.app, cc.Name)
		}
		if !cc.Persist {
			return nil
		}

		p, err := store.Persist(ctx, cell, s.store, cc.Name, store.WithLogger(s.logger))
		if err != nil {
			return err
		}
		s.app.Root().OnCleanup(func() {
			if err := p.Close(); err != nil {
				s.logger.Error("final save failed", "cell", cc.Name, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		return nil, errors.Classify(err).WithDetail(fmt.Sprintf("Cannot set up cell %q", cc.Name))
	}

	opts := []live.HubOption{live.WithLogger(s.logger)}
	if cc.ReadOnly {
		opts = append(opts, live.ReadOnly())
	}
	hub := live.NewHub(cc.Name, cell, s.app.Loop(), opts...)
	if err := hub.Start(ctx); err != nil {
		return nil, err
	}
	return hub, nil
}

func (s *server) closeHubs(ctx context.Context) {
	for _, hub := range s.hubs {
		if err := hub.Close(ctx); err != nil {
			s.logger.Warn("hub close failed", "cell", hub.Name(), "error", err)
		}
	}
}

// newApp wires the configured observers into a new App. The returned
// registry is nil when metrics are off.
func newApp(cfg *config.Config, logger *slog.Logger) (*app.App, *prometheus.Registry) {
	observers := []signal.Observer{observe.Logging(logger)}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts := []observe.MetricsOption{observe.WithRegistry(reg)}
		if cfg.Metrics.Namespace != "" {
			opts = append(opts, observe.WithNamespace(cfg.Metrics.Namespace))
		}
		observers = append(observers, observe.Prometheus(opts...))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, observe.Tracing(observe.WithTracerName(cfg.Tracing.TracerName)))
	}

	a := app.New(
		app.WithName(cfg.Name),
		app.WithLogger(logger),
		app.WithObserver(observe.Multi(observers...)),
	)
	return a, reg
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := newLogger(cfg, logOut)
	a, reg := newApp(cfg, logger)

	st, err := openStore(cfg)
	if err != nil {
		return errors.New(errors.CodeStoreFailure).Wrap(err)
	}
	if st != nil {
		defer st.Close()
	}

	// The app outlives ctx so hubs can be closed on the loop during
	// shutdown.
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()
	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(appCtx) }()

	s, handler, err := newServer(ctx, cfg, a, reg, st)
	if err != nil {
		a.Stop()
		<-runDone
		return err
	}

	s.http = &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "cells", len(s.hubs))
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if serr := s.http.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("http shutdown", "error", serr)
	}
	s.closeHubs(shutdownCtx)
	a.Stop()
	<-runDone

	return err
}
