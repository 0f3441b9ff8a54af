package signal

import (
	"runtime"
	"testing"
)

func TestCancelIsIdempotent(t *testing.T) {
	cell := New(0)

	calls := 0
	u := cell.Subscribe(func(int) { calls++ })
	if !u.HasEffect() {
		t.Fatal("HasEffect() = false before Cancel")
	}

	u.Cancel()
	u.Cancel()

	if u.HasEffect() {
		t.Error("HasEffect() = true after Cancel")
	}
	cell.Set(1)
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (only the immediate call)", calls)
	}
}

func TestCancelOnlyRemovesOwnSubscription(t *testing.T) {
	cell := New(0)

	a := cell.Subscribe(func(int) {})
	b := cell.Subscribe(func(int) {})
	a.Cancel()
	a.Cancel()

	if cell.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", cell.Subscribers())
	}
	if !b.HasEffect() {
		t.Error("cancelling a must not consume b")
	}
}

func TestNilAndZeroUnsubscriber(t *testing.T) {
	var nilU *Unsubscriber[int]
	nilU.Cancel()
	if nilU.HasEffect() {
		t.Error("nil Unsubscriber HasEffect() = true")
	}

	zero := &Unsubscriber[int]{}
	zero.Cancel()
	if zero.HasEffect() {
		t.Error("zero Unsubscriber HasEffect() = true")
	}
}

func TestCancelAfterCellCollected(t *testing.T) {
	u := func() *Unsubscriber[[]byte] {
		cell := New(make([]byte, 64))
		return cell.Subscribe(func([]byte) {})
	}()

	for i := 0; i < 10 && u.cell.Value() != nil; i++ {
		runtime.GC()
	}
	if u.cell.Value() != nil {
		t.Skip("cell not collected by the runtime")
	}

	u.Cancel()
	u.Cancel()
	if u.HasEffect() {
		t.Error("HasEffect() = true after Cancel")
	}
}

func TestScopedUnsubscriberClose(t *testing.T) {
	cell := New(0)

	calls := 0
	func() {
		sub := cell.Subscribe(func(int) { calls++ }).Scoped()
		defer sub.Close()

		if !sub.HasEffect() {
			t.Error("scoped HasEffect() = false before Close")
		}
		cell.Set(1)
	}()

	cell.Set(2)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if cell.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", cell.Subscribers())
	}
}

func TestScopedUnsubscriberClosesOnPanic(t *testing.T) {
	cell := New(0)

	func() {
		defer func() { _ = recover() }()
		sub := cell.Subscribe(func(int) {}).Scoped()
		defer sub.Close()
		panic("unwind")
	}()

	if cell.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", cell.Subscribers())
	}
}

func TestScopedUnsubscriberDetach(t *testing.T) {
	cell := New(0)

	var u *Unsubscriber[int]
	func() {
		sub := cell.Subscribe(func(int) {}).Scoped()
		defer sub.Close()
		u = sub.Detach()

		if sub.HasEffect() {
			t.Error("scoped HasEffect() = true after Detach")
		}
		if again := sub.Detach(); again != nil {
			t.Error("second Detach returned a subscription")
		}
	}()

	if cell.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1 after detached scope ends", cell.Subscribers())
	}
	u.Cancel()
	if cell.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", cell.Subscribers())
	}
}
