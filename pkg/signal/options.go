package signal

// Option configures a cell at construction.
type Option func(*options)

type options struct {
	name     string
	observer Observer
}

// WithName names the cell. The name shows up in errors and is passed to
// the observer.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithObserver attaches an observer to the cell.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Observer receives lifecycle events from cells. It is invoked on the
// goroutine that owns the cell, synchronously, so implementations must not
// block and must not write to the cell they observe.
type Observer interface {
	// BeginPass is called when a write starts. The returned func is called
	// once the notification pass has ended with the number of observers
	// that were invoked. It may be nil.
	BeginPass(cell string) (end func(notified int))

	// Subscribed is called after an observer has been registered.
	// immediate reports whether it was called with the current value.
	Subscribed(cell string, id ID, immediate bool)

	// Unsubscribed is called when a subscription is cancelled. deferred
	// reports whether removal waits for the running pass to end.
	Unsubscribed(cell string, id ID, deferred bool)

	// Rejected is called when a write is refused.
	Rejected(cell string, err error)
}
