package signal

import "weak"

// Unsubscriber cancels one subscription. It does not keep the cell alive:
// cancelling after the cell has been garbage collected does nothing.
//
// The zero value, and the Unsubscriber returned for a constant Value, has
// no effect.
type Unsubscriber[T any] struct {
	cell   weak.Pointer[rawCell[T]]
	id     ID
	active bool
}

func newUnsubscriber[T any](c *rawCell[T], id ID) *Unsubscriber[T] {
	return &Unsubscriber[T]{
		cell:   weak.Make(c),
		id:     id,
		active: true,
	}
}

// Cancel removes the subscription. Calling it more than once is safe.
func (u *Unsubscriber[T]) Cancel() {
	if u == nil || !u.active {
		return
	}
	u.active = false
	if c := u.cell.Value(); c != nil {
		c.unsubscribe(u.id)
	}
}

// HasEffect reports whether Cancel has not been called yet.
func (u *Unsubscriber[T]) HasEffect() bool {
	return u != nil && u.active
}

// ID returns the subscription identifier.
func (u *Unsubscriber[T]) ID() ID {
	return u.id
}

// Scoped wraps u so the subscription ends with the enclosing scope:
//
//	sub := cell.Subscribe(render).Scoped()
//	defer sub.Close()
func (u *Unsubscriber[T]) Scoped() *ScopedUnsubscriber[T] {
	return &ScopedUnsubscriber[T]{inner: u}
}

// ScopedUnsubscriber cancels its subscription on Close unless it was
// detached first.
type ScopedUnsubscriber[T any] struct {
	inner *Unsubscriber[T]
}

// Close cancels the subscription. Only the first call has an effect.
func (s *ScopedUnsubscriber[T]) Close() {
	if s.inner == nil {
		return
	}
	u := s.inner
	s.inner = nil
	u.Cancel()
}

// Detach hands the subscription back as a plain Unsubscriber. Close has no
// effect afterwards. Detach returns nil when called a second time.
func (s *ScopedUnsubscriber[T]) Detach() *Unsubscriber[T] {
	u := s.inner
	s.inner = nil
	return u
}

// HasEffect reports whether Close would still cancel something.
func (s *ScopedUnsubscriber[T]) HasEffect() bool {
	return s.inner.HasEffect()
}
