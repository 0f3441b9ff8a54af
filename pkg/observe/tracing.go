package observe

import (
	"context"

	"github.com/vango-dev/vcell/pkg/signal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for vcell.
const defaultTracerName = "vcell"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "vcell").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Filter decides which cells are traced. Nil traces every cell.
	Filter func(cell string) bool
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithCellFilter limits tracing to cells accepted by filter.
func WithCellFilter(filter func(cell string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// Tracer is a signal.Observer that emits one span per notification pass
// and one error span per rejected write.
type Tracer struct {
	tracer trace.Tracer
	filter func(string) bool
}

// Tracing creates a tracing observer.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before creating
// cells.
func Tracing(opts ...TracingOption) *Tracer {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: config.Provider.Tracer(config.TracerName),
		filter: config.Filter,
	}
}

func (t *Tracer) traced(cell string) bool {
	return t.filter == nil || t.filter(cell)
}

// BeginPass implements signal.Observer.
func (t *Tracer) BeginPass(cell string) func(int) {
	if !t.traced(cell) {
		return nil
	}
	_, span := t.tracer.Start(context.Background(), "vcell.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("vcell.cell", cell)),
	)
	return func(notified int) {
		span.SetAttributes(attribute.Int("vcell.notified", notified))
		span.End()
	}
}

// Subscribed implements signal.Observer.
func (t *Tracer) Subscribed(string, signal.ID, bool) {}

// Unsubscribed implements signal.Observer.
func (t *Tracer) Unsubscribed(string, signal.ID, bool) {}

// Rejected implements signal.Observer.
func (t *Tracer) Rejected(cell string, err error) {
	if !t.traced(cell) {
		return
	}
	_, span := t.tracer.Start(context.Background(), "vcell.rejected",
		trace.WithAttributes(attribute.String("vcell.cell", cell)),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
