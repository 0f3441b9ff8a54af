package signal

// Signal is a read and subscribe handle to a cell.
//
// Signal is a small value: copying it shares the cell. The zero Signal has
// no cell and panics on use.
type Signal[T any] struct {
	raw *rawCell[T]
}

// TryGet returns a copy of the current value. It fails with
// ErrUninitialized when the cell was created by Uninit and has not been
// set yet.
func (s Signal[T]) TryGet() (T, error) {
	return s.raw.tryGet()
}

// Get returns a copy of the current value. It panics with ErrUninitialized
// on a cell that has not been set yet.
func (s Signal[T]) Get() T {
	v, err := s.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// Subscribe registers fn for every future change.
//
// Unless the cell is in the middle of a notification pass (or has no
// value yet), fn is first called once with the current value before
// Subscribe returns. The returned Unsubscriber cancels this subscription.
func (s Signal[T]) Subscribe(fn func(T)) *Unsubscriber[T] {
	id := s.raw.subscribe(fn)
	return newUnsubscriber(s.raw, id)
}

// SubscribeForever is Subscribe for observers that live as long as the
// cell itself.
func (s Signal[T]) SubscribeForever(fn func(T)) {
	s.raw.subscribe(fn)
}

// SubscribeWithCancel is Subscribe where fn receives its own Unsubscriber,
// so it can cancel itself from inside a notification.
func (s Signal[T]) SubscribeWithCancel(fn func(T, *Unsubscriber[T])) {
	u := newUnsubscriber(s.raw, 0)
	u.id = s.raw.subscribe(func(v T) { fn(v, u) })

	// fn may have cancelled during the immediate call, before the entry
	// existed.
	if !u.HasEffect() {
		s.raw.unsubscribe(u.id)
	}
}

// State returns the current state of the cell.
func (s Signal[T]) State() State {
	return s.raw.state
}

// Subscribers returns the number of live (not cancelled) observers.
func (s Signal[T]) Subscribers() int {
	return s.raw.subs.live
}

// Initialized reports whether the cell holds a value.
func (s Signal[T]) Initialized() bool {
	return s.raw.initialized
}

// Name returns the name given with WithName.
func (s Signal[T]) Name() string {
	return s.raw.name
}

// Mutable is a Signal that can also be written.
type Mutable[T any] struct {
	Signal[T]
}

// New creates a cell holding initial.
func New[T any](initial T, opts ...Option) Mutable[T] {
	return Mutable[T]{Signal[T]{raw: newRaw(initial, true, opts)}}
}

// Uninit creates a cell without a value. It must be Set before it is read.
func Uninit[T any](opts ...Option) Mutable[T] {
	var zero T
	return Mutable[T]{Signal[T]{raw: newRaw(zero, false, opts)}}
}

// ReadOnly narrows the handle to its read and subscribe surface.
func (m Mutable[T]) ReadOnly() Signal[T] {
	return m.Signal
}

// WithEquals sets an equality function used by Set. When the new value
// equals the current one, Set returns without notifying.
func (m Mutable[T]) WithEquals(fn func(T, T) bool) Mutable[T] {
	m.raw.equal = fn
	return m
}

// TryMutate changes the value in place through fn and notifies every
// observer. If the cell is not idle it returns an error matching
// ErrUpdating and fn is not called.
func (m Mutable[T]) TryMutate(fn func(*T)) error {
	return m.raw.tryMutate(fn)
}

// Mutate is TryMutate that panics on error.
func (m Mutable[T]) Mutate(fn func(*T)) {
	if err := m.TryMutate(fn); err != nil {
		panic(err)
	}
}

// TrySet replaces the value and notifies every observer.
func (m Mutable[T]) TrySet(value T) error {
	return m.raw.trySet(value)
}

// Set is TrySet that panics on error.
func (m Mutable[T]) Set(value T) {
	if err := m.TrySet(value); err != nil {
		panic(err)
	}
}

// TryUpdate replaces the value with fn(current) and notifies every
// observer.
func (m Mutable[T]) TryUpdate(fn func(T) T) error {
	return m.raw.tryMutate(func(p *T) { *p = fn(*p) })
}

// Update is TryUpdate that panics on error.
func (m Mutable[T]) Update(fn func(T) T) {
	if err := m.TryUpdate(fn); err != nil {
		panic(err)
	}
}
