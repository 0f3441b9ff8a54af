package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vango-dev/vcell/pkg/signal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordedSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }
func (s *recordedSpan) SetStatus(code codes.Code, _ string)    { s.status = code }
func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}
func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans *[]*recordedSpan
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, attrs: cfg.Attributes()}
	*t.spans = append(*t.spans, span)
	return ctx, span
}

type recordingProvider struct {
	noop.TracerProvider
	spans *[]*recordedSpan
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{spans: p.spans}
}

func attr(span *recordedSpan, key string) (attribute.Value, bool) {
	for _, kv := range span.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingObserver(t *testing.T) {
	var spans []*recordedSpan
	tr := Tracing(WithTracerName("test"), WithTracerProvider(recordingProvider{spans: &spans}))

	cell := signal.New(0, signal.WithName("count"), signal.WithObserver(tr))
	cell.SubscribeForever(func(n int) {
		if n == 1 {
			_ = cell.TrySet(2)
		}
	})
	cell.Set(1)

	require.Len(t, spans, 2)

	rejected, pass := spans[1], spans[0]
	require.Equal(t, "vcell.pass", pass.name)
	require.True(t, pass.ended)
	v, ok := attr(pass, "vcell.notified")
	require.True(t, ok)
	require.Equal(t, int64(1), v.AsInt64())

	require.Equal(t, "vcell.rejected", rejected.name)
	require.Equal(t, codes.Error, rejected.status)
	require.Len(t, rejected.errs, 1)
	require.True(t, errors.Is(rejected.errs[0], signal.ErrUpdating))
}

func TestTracingFilter(t *testing.T) {
	var spans []*recordedSpan
	tr := Tracing(
		WithTracerProvider(recordingProvider{spans: &spans}),
		WithCellFilter(func(cell string) bool { return cell == "traced" }),
	)

	signal.New(0, signal.WithName("quiet"), signal.WithObserver(tr)).Set(1)
	signal.New(0, signal.WithName("traced"), signal.WithObserver(tr)).Set(1)

	require.Len(t, spans, 1)
	v, _ := attr(spans[0], "vcell.cell")
	require.Equal(t, "traced", v.AsString())
}

func TestTracingDefaultProvider(t *testing.T) {
	tr := Tracing()
	cell := signal.New(0, signal.WithObserver(tr))
	require.NotPanics(t, func() { cell.Set(1) })
}
