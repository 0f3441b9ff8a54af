package live_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vcell/internal/errors"
	"github.com/vango-dev/vcell/internal/logging"
	"github.com/vango-dev/vcell/pkg/app"
	"github.com/vango-dev/vcell/pkg/live"
	"github.com/vango-dev/vcell/pkg/signal"
)

type fixture struct {
	ctx     context.Context
	loop    *app.Loop
	counter signal.Mutable[int]
	banner  signal.Mutable[string]
	pending signal.Mutable[int]
	hubs    []*live.Hub[int]
	bhub    *live.Hub[string]
	server  *httptest.Server
}

func newFixture(t *testing.T, opts ...live.RouterOption) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loop := app.NewLoop(logging.NewNop(), 16)
	go loop.Run(ctx)

	f := &fixture{
		ctx:     ctx,
		loop:    loop,
		counter: signal.New(0, signal.WithName("counter")),
		banner:  signal.New("hello", signal.WithName("banner")),
		pending: signal.Uninit[int](signal.WithName("pending")),
	}

	nop := live.WithLogger(logging.NewNop())
	counterHub := live.NewHub("counter", f.counter, loop, nop)
	pendingHub := live.NewHub("pending", f.pending, loop, nop)
	f.bhub = live.NewHub("banner", f.banner, loop, live.ReadOnly(), nop)
	f.hubs = []*live.Hub[int]{counterHub, pendingHub}

	require.NoError(t, counterHub.Start(ctx))
	require.NoError(t, pendingHub.Start(ctx))
	require.NoError(t, f.bhub.Start(ctx))

	router := live.NewRouter([]live.Binding{counterHub, f.bhub, pendingHub},
		append(opts, live.WithRouterLogger(logging.NewNop()))...)
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) dial(t *testing.T, cell string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/cells/" + cell + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) live.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame live.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHub_RoundTrip(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "counter")

	first := readFrame(t, conn)
	assert.Equal(t, live.FrameValue, first.Type)
	assert.Equal(t, "counter", first.Cell)
	assert.JSONEq(t, `0`, string(first.Value))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "set", "value": 5}))
	got := readFrame(t, conn)
	assert.JSONEq(t, `5`, string(got.Value))

	var current int
	require.NoError(t, f.loop.Do(f.ctx, func() error {
		current = f.counter.Get()
		return nil
	}))
	assert.Equal(t, 5, current)

	// In-process writes reach the client too.
	require.NoError(t, f.loop.Do(f.ctx, func() error {
		f.counter.Update(func(n int) int { return n + 1 })
		return nil
	}))
	got = readFrame(t, conn)
	assert.JSONEq(t, `6`, string(got.Value))
}

func TestHub_Broadcast(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t, "counter")
	b := f.dial(t, "counter")
	readFrame(t, a)
	readFrame(t, b)

	require.NoError(t, a.WriteJSON(map[string]any{"type": "set", "value": 9}))
	assert.JSONEq(t, `9`, string(readFrame(t, a).Value))
	assert.JSONEq(t, `9`, string(readFrame(t, b).Value))
	assert.Equal(t, 2, f.hubs[0].Clients())
}

func TestHub_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cell string
		msg  string
		code string
	}{
		{"not json", "counter", `{`, errors.CodeInvalidFrame},
		{"unknown type", "counter", `{"type":"poke"}`, errors.CodeInvalidFrame},
		{"wrong value type", "counter", `{"type":"set","value":"five"}`, errors.CodeInvalidFrame},
		{"missing value", "counter", `{"type":"set"}`, errors.CodeInvalidFrame},
		{"read-only", "banner", `{"type":"set","value":"bye"}`, errors.CodeReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := f.dial(t, tt.cell)
			readFrame(t, conn)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)))
			frame := readFrame(t, conn)
			assert.Equal(t, live.FrameError, frame.Type)
			assert.Equal(t, tt.code, frame.Code)
			assert.NotEmpty(t, frame.Message)
		})
	}

	var banner string
	require.NoError(t, f.loop.Do(f.ctx, func() error {
		banner = f.banner.Get()
		return nil
	}))
	assert.Equal(t, "hello", banner)
}

func TestHub_UninitCell(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "pending")

	// No frame until the first set, which then reaches the client.
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "set", "value": 1}))
	frame := readFrame(t, conn)
	assert.Equal(t, live.FrameValue, frame.Type)
	assert.JSONEq(t, `1`, string(frame.Value))
}

func TestHub_Close(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "counter")
	readFrame(t, conn)

	require.NoError(t, f.hubs[0].Close(f.ctx))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, f.hubs[0].Clients())

	var subs int
	require.NoError(t, f.loop.Do(f.ctx, func() error {
		subs = f.counter.Subscribers()
		return nil
	}))
	assert.Equal(t, 0, subs)

	resp, err := http.Get(f.server.URL + "/cells/counter/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, live.WithMetrics("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	status, body := get(t, f.server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = get(t, f.server.URL+"/cells")
	assert.Equal(t, http.StatusOK, status)
	var infos []live.CellInfo
	require.NoError(t, json.Unmarshal([]byte(body), &infos))
	assert.Equal(t, []live.CellInfo{
		{Name: "banner", ReadOnly: true},
		{Name: "counter"},
		{Name: "pending"},
	}, infos)

	status, body = get(t, f.server.URL+"/cells/banner")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"hello"`, body)

	status, body = get(t, f.server.URL+"/cells/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, errors.CodeUnknownCell)

	status, body = get(t, f.server.URL+"/cells/pending")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, errors.CodeUninitialized)

	status, _ = get(t, f.server.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_NoMetrics(t *testing.T) {
	f := newFixture(t)
	status, _ := get(t, f.server.URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, status)
}
