package signal

// Value is anything that can feed an observer: a cell, a derived cell, or
// a constant. Bindings accept a Value so callers can pass either.
type Value[T any] interface {
	Subscribe(fn func(T)) *Unsubscriber[T]
}

type constant[T any] struct {
	v T
}

// Const returns a Value that calls every observer once with v and never
// changes.
func Const[T any](v T) Value[T] {
	return constant[T]{v: v}
}

func (c constant[T]) Subscribe(fn func(T)) *Unsubscriber[T] {
	fn(c.v)
	return &Unsubscriber[T]{}
}
