// Package app holds the per-process context that cells and their
// bindings share.
//
// An App is created once in main and passed to whatever needs it. It
// carries the logger and cell observer, the Loop every cell operation runs
// on when driven from other goroutines, and the root Owner that keeps
// scoped subscriptions alive until shutdown.
//
//	a := app.New(app.WithLogger(logger))
//	count := app.NewCell(a, "count", 0)
//	go a.Run(ctx)
//
//	a.Loop().Dispatch(func() { count.Update(func(n int) int { return n + 1 }) })
package app
