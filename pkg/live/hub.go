package live

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vcell/internal/errors"
	"github.com/vango-dev/vcell/pkg/app"
	"github.com/vango-dev/vcell/pkg/signal"
)

// ErrHubClosed is returned by a hub that has been closed.
var ErrHubClosed = stderrors.New("live: hub closed")

// Default hub settings.
const (
	DefaultSendBuffer   = 16
	DefaultWriteTimeout = 10 * time.Second
	DefaultReadTimeout  = 60 * time.Second
)

// HubOption configures a Hub.
type HubOption func(*hubConfig)

type hubConfig struct {
	readOnly     bool
	sendBuffer   int
	writeTimeout time.Duration
	readTimeout  time.Duration
	checkOrigin  func(*http.Request) bool
	logger       *slog.Logger
}

// ReadOnly makes the hub reject set frames with E003.
func ReadOnly() HubOption {
	return func(c *hubConfig) { c.readOnly = true }
}

// WithSendBuffer sets how many frames may queue for a slow client before
// it is dropped.
func WithSendBuffer(n int) HubOption {
	return func(c *hubConfig) { c.sendBuffer = n }
}

// WithTimeouts sets the per-write deadline and the idle read deadline.
// Pings are sent at nine tenths of the read timeout.
func WithTimeouts(write, read time.Duration) HubOption {
	return func(c *hubConfig) {
		c.writeTimeout = write
		c.readTimeout = read
	}
}

// WithCheckOrigin sets the origin check for upgrades.
func WithCheckOrigin(fn func(*http.Request) bool) HubOption {
	return func(c *hubConfig) { c.checkOrigin = fn }
}

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) HubOption {
	return func(c *hubConfig) { c.logger = logger }
}

// Hub streams one cell to WebSocket clients.
type Hub[T any] struct {
	name     string
	cell     signal.Mutable[T]
	loop     *app.Loop
	cfg      hubConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// sub is only touched on the loop.
	sub *signal.ScopedUnsubscriber[T]

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool
}

// NewHub creates a hub for cell. Start must be called before clients
// connect.
func NewHub[T any](name string, cell signal.Mutable[T], loop *app.Loop, opts ...HubOption) *Hub[T] {
	cfg := hubConfig{
		sendBuffer:   DefaultSendBuffer,
		writeTimeout: DefaultWriteTimeout,
		readTimeout:  DefaultReadTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.readTimeout <= 0 {
		cfg.readTimeout = DefaultReadTimeout
	}
	if cfg.writeTimeout <= 0 {
		cfg.writeTimeout = DefaultWriteTimeout
	}
	if cfg.sendBuffer <= 0 {
		cfg.sendBuffer = DefaultSendBuffer
	}

	return &Hub[T]{
		name:   name,
		cell:   cell,
		loop:   loop,
		cfg:    cfg,
		logger: cfg.logger.With("cell", name),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.checkOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// Name returns the cell name.
func (h *Hub[T]) Name() string { return h.name }

// IsReadOnly reports whether clients may write the cell.
func (h *Hub[T]) IsReadOnly() bool { return h.cfg.readOnly }

// Start subscribes the hub to its cell on the loop.
func (h *Hub[T]) Start(ctx context.Context) error {
	return h.loop.Do(ctx, func() error {
		if h.sub != nil {
			return nil
		}
		h.sub = h.cell.Subscribe(h.broadcast).Scoped()
		return nil
	})
}

// broadcast runs on the loop inside the cell's notification pass.
func (h *Hub[T]) broadcast(v T) {
	msg, err := valueFrame(h.name, v)
	if err != nil {
		h.logger.Error("encode value failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for c := range h.clients {
		if !h.enqueueLocked(c, msg) {
			h.logger.Warn("dropping slow client", "remote", c.conn.RemoteAddr().String())
			h.dropLocked(c)
		}
	}
}

func (h *Hub[T]) enqueueLocked(c *client, msg []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub[T]) enqueue(c *client, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueueLocked(c, msg)
}

func (h *Hub[T]) dropLocked(c *client) {
	if c.closed {
		return
	}
	c.closed = true
	delete(h.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients.
func (h *Hub[T]) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Snapshot returns the current value encoded as JSON.
func (h *Hub[T]) Snapshot(ctx context.Context) (json.RawMessage, error) {
	var data []byte
	err := h.loop.Do(ctx, func() error {
		v, err := h.cell.TryGet()
		if err != nil {
			return err
		}
		data, err = json.Marshal(v)
		return err
	})
	return data, err
}

// ServeHTTP upgrades the request and streams the cell until the client
// goes away.
func (h *Hub[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.cfg.sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	h.logger.Info("client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)

	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "remote", conn.RemoteAddr().String())
}

func (h *Hub[T]) writeLoop(c *client) {
	ping := time.NewTicker(h.cfg.readTimeout * 9 / 10)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.cfg.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub[T]) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadDeadline(time.Now().Add(h.cfg.readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.readTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(h.cfg.readTimeout))

		if ce := h.apply(ctx, msg); ce != nil {
			h.enqueue(c, errorFrame(ce))
		}
	}
}

// apply handles one client message and returns the error to report, if any.
func (h *Hub[T]) apply(ctx context.Context, msg []byte) *errors.CellError {
	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return errors.New(errors.CodeInvalidFrame).Wrap(err)
	}
	if frame.Type != FrameSet {
		return errors.New(errors.CodeInvalidFrame).
			WithDetail("Unsupported frame type " + `"` + frame.Type + `"`)
	}
	if h.cfg.readOnly {
		return errors.New(errors.CodeReadOnly)
	}

	var v T
	if err := json.Unmarshal(frame.Value, &v); err != nil {
		return errors.New(errors.CodeInvalidFrame).Wrap(err)
	}

	if err := h.loop.Do(ctx, func() error { return h.cell.TrySet(v) }); err != nil {
		h.logger.Warn("client write rejected", "error", err)
		return errors.Classify(err)
	}
	return nil
}

// Close unsubscribes from the cell and disconnects every client.
func (h *Hub[T]) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	return h.loop.Do(ctx, func() error {
		if h.sub != nil {
			h.sub.Close()
			h.sub = nil
		}
		return nil
	})
}
