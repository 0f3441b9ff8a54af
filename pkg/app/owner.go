package app

import (
	"sync"
	"sync/atomic"
)

var ownerIDs atomic.Uint64

// Closer is anything an Owner can release, such as a
// signal.ScopedUnsubscriber.
type Closer interface {
	Close()
}

// Owner is a scope that owns subscriptions and cleanups. Disposing it
// disposes its children first, then runs its own cleanups in reverse
// registration order.
//
// Owners form a tree that mirrors the views built on top of the cells: a
// view creates a child Owner, hands its subscriptions to it, and disposes
// it when the view goes away.
type Owner struct {
	id     uint64
	parent *Owner

	children []*Owner
	cleanups []func()
	mu       sync.Mutex

	disposed atomic.Bool
}

// NewOwner creates an Owner registered as a child of parent. A nil parent
// creates a root.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     ownerIDs.Add(1),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// OnCleanup registers fn to run on Dispose. On a disposed Owner fn runs
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if o.disposed.Load() {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Own closes c when the Owner is disposed.
func (o *Owner) Own(c Closer) {
	o.OnCleanup(c.Close)
}

// Dispose releases everything the Owner holds. Only the first call has an
// effect.
func (o *Owner) Dispose() {
	if !o.disposed.CompareAndSwap(false, true) {
		return
	}

	o.mu.Lock()
	children := o.children
	cleanups := o.cleanups
	o.children = nil
	o.cleanups = nil
	o.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}
}

func (o *Owner) addChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed.Load() {
		// A child of a disposed owner is born disposed.
		child.disposed.Store(true)
		return
	}
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// Children returns the number of live child Owners.
func (o *Owner) Children() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.children)
}
