package signal

import "math"

// State is the position of a cell in its mutation state machine.
type State uint8

const (
	// Idle means nothing is running on the cell. Writes are only accepted
	// in this state.
	Idle State = iota

	// Mutating means the value is being changed or observers are being
	// notified of the change.
	Mutating

	// Subscribing means a new observer is being called with the current
	// value.
	Subscribing
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mutating:
		return "mutating"
	case Subscribing:
		return "subscribing"
	default:
		return "unknown"
	}
}

// rawCell owns the value and the observer registry. All access goes
// through the state gate; there are no locks.
type rawCell[T any] struct {
	value       T
	initialized bool

	state  State
	subs   registry[T]
	nextID ID

	name     string
	equal    func(T, T) bool
	observer Observer
}

func newRaw[T any](value T, initialized bool, opts []Option) *rawCell[T] {
	o := applyOptions(opts)
	return &rawCell[T]{
		value:       value,
		initialized: initialized,
		nextID:      1,
		name:        o.name,
		observer:    o.observer,
	}
}

func (c *rawCell[T]) reject() error {
	err := &UpdatingError{Cell: c.name, State: c.state}
	if c.observer != nil {
		c.observer.Rejected(c.name, err)
	}
	return err
}

func (c *rawCell[T]) tryGet() (T, error) {
	if !c.initialized {
		var zero T
		return zero, ErrUninitialized
	}
	return c.value, nil
}

// tryMutate changes the value in place and notifies. f is never invoked
// when the write is refused.
func (c *rawCell[T]) tryMutate(f func(*T)) error {
	if c.state != Idle {
		return c.reject()
	}
	if !c.initialized {
		return ErrUninitialized
	}
	return c.write(f)
}

// trySet replaces the value. It is the only write allowed on a cell that
// was never initialized.
func (c *rawCell[T]) trySet(v T) error {
	if c.state != Idle {
		return c.reject()
	}
	if c.initialized && c.equal != nil && c.equal(c.value, v) {
		return nil
	}
	return c.write(func(p *T) { *p = v })
}

func (c *rawCell[T]) write(f func(*T)) error {
	c.state = Mutating

	var end func(int)
	if c.observer != nil {
		end = c.observer.BeginPass(c.name)
	}

	notified := 0
	defer func() {
		// Runs on panics too, so a failing observer does not wedge the cell.
		c.state = Idle
		c.subs.sweep()
		if end != nil {
			end(notified)
		}
	}()

	f(&c.value)
	c.initialized = true
	notified = c.notifyAll()
	return nil
}

// notifyAll is the notification pass. The length is re-read on every step
// so observers appended by reentrant subscribes are reached in this pass.
func (c *rawCell[T]) notifyAll() int {
	notified := 0
	for i := 0; i < c.subs.len(); i++ {
		n := c.subs.at(i)
		if n.dead {
			continue
		}
		n.fn(c.value)
		notified++
	}
	return notified
}

func (c *rawCell[T]) allocID() ID {
	id := c.nextID
	if c.nextID < math.MaxUint64 {
		c.nextID++
	}
	return id
}

func (c *rawCell[T]) subscribe(fn func(T)) ID {
	id := c.allocID()

	immediate := c.state != Mutating && c.initialized
	if immediate {
		prev := c.state
		c.state = Subscribing
		func() {
			defer func() { c.state = prev }()
			fn(c.value)
		}()
	}

	c.subs.insert(id, fn)
	if c.observer != nil {
		c.observer.Subscribed(c.name, id, immediate)
	}
	return id
}

func (c *rawCell[T]) unsubscribe(id ID) {
	i, ok := c.subs.find(id)
	if !ok || c.subs.at(i).dead {
		return
	}

	deferred := c.state == Mutating
	if deferred {
		c.subs.tombstone(i)
	} else {
		c.subs.remove(i)
	}

	if c.observer != nil {
		c.observer.Unsubscribed(c.name, id, deferred)
	}
}
