package vtest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vango-dev/vcell/pkg/signal"
)

// Recorder collects the values an observer is called with.
type Recorder[T any] struct {
	values []T
	unsub  *signal.Unsubscriber[T]
}

// Record subscribes a Recorder to v and cancels it on test cleanup. Like
// any observer it must be used on the goroutine that owns the cell.
func Record[T any](t testing.TB, v signal.Value[T]) *Recorder[T] {
	t.Helper()
	r := &Recorder[T]{}
	r.unsub = v.Subscribe(func(x T) {
		r.values = append(r.values, x)
	})
	t.Cleanup(r.unsub.Cancel)
	return r
}

// Values returns a copy of everything recorded so far.
func (r *Recorder[T]) Values() []T {
	return append([]T(nil), r.values...)
}

// Len returns the number of recorded calls.
func (r *Recorder[T]) Len() int {
	return len(r.values)
}

// Last returns the most recent value and whether there is one.
func (r *Recorder[T]) Last() (T, bool) {
	if len(r.values) == 0 {
		var zero T
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// Reset forgets recorded values.
func (r *Recorder[T]) Reset() {
	r.values = r.values[:0]
}

// Stop cancels the recorder's subscription.
func (r *Recorder[T]) Stop() {
	r.unsub.Cancel()
}

// ExpectValues asserts that the recorder saw exactly want, in order.
//
// Example:
//
//	vtest.ExpectValues(t, rec, 0, 5, 10)
func ExpectValues[T any](t testing.TB, r *Recorder[T], want ...T) {
	t.Helper()
	got := r.Values()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recorded %v, want %v", got, want)
	}
}

// ExpectUpdating asserts that err is a rejected reentrant write.
func ExpectUpdating(t testing.TB, err error) {
	t.Helper()
	if !errors.Is(err, signal.ErrUpdating) {
		t.Errorf("expected ErrUpdating, got %v", err)
	}
}

// ExpectUninitialized asserts that err reports a read before the first set.
func ExpectUninitialized(t testing.TB, err error) {
	t.Helper()
	if !errors.Is(err, signal.ErrUninitialized) {
		t.Errorf("expected ErrUninitialized, got %v", err)
	}
}
