package app

import (
	"context"
	"log/slog"

	"github.com/vango-dev/vcell/pkg/signal"
)

// DefaultLoopBuffer is the default number of queued loop tasks.
const DefaultLoopBuffer = 256

// App is the application context shared by cells and bindings.
type App struct {
	name     string
	logger   *slog.Logger
	observer signal.Observer
	loop     *Loop
	root     *Owner
}

// Option configures an App.
type Option func(*config)

type config struct {
	name       string
	logger     *slog.Logger
	observer   signal.Observer
	loopBuffer int
}

// WithName sets the application name used in logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithObserver sets the observer attached to every cell created through
// the App.
func WithObserver(obs signal.Observer) Option {
	return func(c *config) {
		c.observer = obs
	}
}

// WithLoopBuffer sets the loop queue size. Default: DefaultLoopBuffer.
func WithLoopBuffer(n int) Option {
	return func(c *config) {
		c.loopBuffer = n
	}
}

// New creates an App.
func New(opts ...Option) *App {
	cfg := config{
		name:       "vcell",
		loopBuffer: DefaultLoopBuffer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	logger := cfg.logger.With("app", cfg.name)
	return &App{
		name:     cfg.name,
		logger:   logger,
		observer: cfg.observer,
		loop:     NewLoop(logger, cfg.loopBuffer),
		root:     NewOwner(nil),
	}
}

// Name returns the application name.
func (a *App) Name() string { return a.name }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Observer returns the cell observer, possibly nil.
func (a *App) Observer() signal.Observer { return a.observer }

// Loop returns the loop that owns the App's cells.
func (a *App) Loop() *Loop { return a.loop }

// Root returns the root Owner.
func (a *App) Root() *Owner { return a.root }

// CellOptions returns the options for a cell named name.
func (a *App) CellOptions(name string) []signal.Option {
	opts := []signal.Option{signal.WithName(name)}
	if a.observer != nil {
		opts = append(opts, signal.WithObserver(a.observer))
	}
	return opts
}

// Run runs the loop until ctx is cancelled or Stop is called, then
// disposes the root Owner on the loop goroutine.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app started")
	err := a.loop.Run(ctx)
	a.root.Dispose()
	a.logger.Info("app stopped")
	return err
}

// Stop stops the loop.
func (a *App) Stop() {
	a.loop.Stop()
}

// NewCell creates a named cell wired to the App's observer.
func NewCell[T any](a *App, name string, initial T) signal.Mutable[T] {
	return signal.New(initial, a.CellOptions(name)...)
}

// NewUninitCell creates a named cell without a value.
func NewUninitCell[T any](a *App, name string) signal.Mutable[T] {
	return signal.Uninit[T](a.CellOptions(name)...)
}
