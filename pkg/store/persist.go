package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/vcell/pkg/signal"
)

// DefaultSaveTimeout bounds a single background save.
const DefaultSaveTimeout = 5 * time.Second

// PersistOption configures a Persister.
type PersistOption func(*persistConfig)

type persistConfig struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithLogger sets the logger used for save failures.
func WithLogger(logger *slog.Logger) PersistOption {
	return func(c *persistConfig) {
		c.logger = logger
	}
}

// WithSaveTimeout bounds each background save.
func WithSaveTimeout(d time.Duration) PersistOption {
	return func(c *persistConfig) {
		c.timeout = d
	}
}

// Persister mirrors a cell into a Store.
//
// Values are JSON-encoded inside the notification pass and handed to a
// writer goroutine. Only the latest pending value is kept, so a burst of
// updates costs one write.
type Persister[T any] struct {
	store   Store
	key     string
	logger  *slog.Logger
	timeout time.Duration

	sub *signal.ScopedUnsubscriber[T]

	mu      sync.Mutex
	pending []byte
	dirty   bool
	lastErr error

	// saveMu serializes saves so an older value never lands after a newer one.
	saveMu sync.Mutex

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// Persist binds cell to key in st.
//
// If st holds a value for key it is decoded and set on the cell before
// Persist returns; a missing key leaves the cell as is. Persist and Close
// must run on the goroutine that owns the cell.
func Persist[T any](ctx context.Context, cell signal.Mutable[T], st Store, key string, opts ...PersistOption) (*Persister[T], error) {
	cfg := persistConfig{
		logger:  slog.Default(),
		timeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := st.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("persist %q: %w", key, err)
	}
	if data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("persist %q: %w: %v", key, ErrDecode, err)
		}
		if err := cell.TrySet(v); err != nil {
			return nil, fmt.Errorf("persist %q: %w", key, err)
		}
	}

	p := &Persister[T]{
		store:   st,
		key:     key,
		logger:  cfg.logger.With("cell", cell.Name(), "key", key),
		timeout: cfg.timeout,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()

	p.sub = cell.Subscribe(p.enqueue).Scoped()
	return p, nil
}

func (p *Persister[T]) enqueue(v T) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("persist encode failed", "error", err)
		return
	}

	p.mu.Lock()
	p.pending = data
	p.dirty = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Persister[T]) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.save(context.Background())
		case <-p.done:
			p.save(context.Background())
			return
		}
	}
}

func (p *Persister[T]) save(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	data, dirty := p.pending, p.dirty
	p.pending, p.dirty = nil, false
	p.mu.Unlock()

	if !dirty {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.store.Save(ctx, p.key, data)
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("persist save failed", "error", err)
	}
	return err
}

// Flush writes any pending value synchronously.
func (p *Persister[T]) Flush(ctx context.Context) error {
	return p.save(ctx)
}

// Err returns the result of the most recent save.
func (p *Persister[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Close stops mirroring, writes the last pending value and waits for the
// writer to exit. It does not close the Store.
func (p *Persister[T]) Close() error {
	p.once.Do(func() {
		p.sub.Close()
		close(p.done)
	})
	<-p.stopped
	return p.Err()
}
