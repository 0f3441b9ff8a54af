// Package observe provides signal.Observer implementations for metrics,
// tracing, and logging.
//
//	obs := observe.Multi(
//	    observe.Prometheus(observe.WithNamespace("myapp")),
//	    observe.Tracing(observe.WithTracerName("myapp")),
//	    observe.Logging(logger),
//	)
//	a := app.New(app.WithObserver(obs))
//
// Observers run synchronously inside notification passes and never block.
package observe
