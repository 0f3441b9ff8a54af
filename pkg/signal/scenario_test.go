package signal

import (
	"slices"
	"testing"
)

// B is subscribed from inside A's callback while the pass for 10 is
// running: it is not called immediately, but the pass reaches it at the
// tail, so it sees 10 through the pass and 15 afterwards.
func TestEndToEndScenario(t *testing.T) {
	cell := New(0)

	var a, b []int
	cell.SubscribeForever(func(n int) {
		a = append(a, n)
		if n == 10 {
			cell.SubscribeForever(func(n int) { b = append(b, n) })
			if len(b) != 0 {
				t.Errorf("B fired immediately with %v", b)
			}
		}
	})
	if !slices.Equal(a, []int{0}) {
		t.Fatalf("A = %v after subscribe, want [0]", a)
	}

	cell.Set(5)
	if !slices.Equal(a, []int{0, 5}) {
		t.Fatalf("A = %v after set(5), want [0 5]", a)
	}

	cell.Set(10)
	cell.Set(15)

	if !slices.Equal(a, []int{0, 5, 10, 15}) {
		t.Errorf("A = %v, want [0 5 10 15]", a)
	}
	if !slices.Equal(b, []int{10, 15}) {
		t.Errorf("B = %v, want [10 15]", b)
	}
}
