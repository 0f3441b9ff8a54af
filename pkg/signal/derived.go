package signal

// Derived is a read-only cell recomputed from an upstream Value.
//
// Derivation is push based: the upstream subscription is taken when the
// Derived is built and every upstream notification re-derives the value
// and notifies the Derived's own observers. Close detaches from upstream.
type Derived[T any] struct {
	Signal[T]
	upstream interface{ Cancel() }
}

// Close stops following upstream. The last derived value stays readable.
func (d *Derived[T]) Close() {
	d.upstream.Cancel()
}

// Map derives a cell holding fn applied to each value of src.
//
// If src has a value (and is not mid-notification), the derived cell is
// seeded immediately; otherwise it stays uninitialized until src changes.
func Map[S, T any](src Value[S], fn func(S) T, opts ...Option) *Derived[T] {
	out := Uninit[T](opts...)
	u := src.Subscribe(func(v S) {
		out.Set(fn(v))
	})
	return &Derived[T]{Signal: out.ReadOnly(), upstream: u}
}

// Filter derives a cell that only takes the values of src accepted by
// pred. It stays uninitialized until the first accepted value.
func Filter[T any](src Value[T], pred func(T) bool, opts ...Option) *Derived[T] {
	out := Uninit[T](opts...)
	u := src.Subscribe(func(v T) {
		if pred(v) {
			out.Set(v)
		}
	})
	return &Derived[T]{Signal: out.ReadOnly(), upstream: u}
}
