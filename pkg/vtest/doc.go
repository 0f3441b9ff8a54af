// Package vtest provides testing helpers for code built on cells.
//
// # Recording Observers
//
// Record subscribes a recorder that keeps every value it is called with.
// The subscription is cancelled when the test ends.
//
//	func TestCounter(t *testing.T) {
//	    count := signal.New(0)
//	    rec := vtest.Record(t, count)
//	    count.Set(1)
//	    vtest.ExpectValues(t, rec, 0, 1)
//	}
//
// # Error Assertions
//
//	vtest.ExpectUpdating(t, cell.TrySet(2))
//	vtest.ExpectUninitialized(t, err)
package vtest
