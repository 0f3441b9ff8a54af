// Package signal provides the reactive cell at the core of vcell.
//
// A cell holds one value and a registry of observers. Every successful
// write runs a synchronous notification pass over the observers, in
// subscription order, before the write returns.
//
// # Core Types
//
// Mutable[T] is the writable handle, Signal[T] the read/subscribe view:
//
//	count := signal.New(0)
//	unsub := count.Subscribe(func(n int) { fmt.Println(n) }) // prints 0
//	count.Set(5)                                           // prints 5
//	count.Update(func(n int) int { return n + 1 })         // prints 6
//	unsub.Cancel()
//
// Handles are small values. Copying one is the clone; all copies share
// the same cell.
//
// # Reentrancy
//
// A cell is a state machine (Idle, Mutating, Subscribing). Writes are only
// accepted while Idle, so a write issued from inside a notification pass of
// the same cell is rejected with ErrUpdating by the Try* forms and panics
// in the infallible forms. Subscribing from inside a pass is allowed: the
// new observer is not called immediately but is appended and reached later
// in the same pass. Cancelling from inside a pass tombstones the entry; it
// is removed once the pass ends.
//
// # Goroutines
//
// Cells are not safe for concurrent use. Confine each cell to one
// goroutine, for example the app.Loop of the owning application.
package signal
