package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vcell/internal/errors"
	"github.com/vango-dev/vcell/pkg/signal"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through the cell contracts",
		Long: `Run a scripted session against a few cells and print what each
observer sees: the immediate call on subscribe, a subscriber added
mid-pass, a write rejected from inside an observer, cancellation during
a pass, and a read of an uninitialized cell.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(w io.Writer) error {
	fmt.Fprintln(w, "Subscribing during a pass")
	a, b := demoScenario()
	info(w, "A saw %v", a)
	info(w, "B saw %v", b)

	fmt.Fprintln(w, "Writing from an observer")
	err := demoReentrantWrite()
	if err == nil {
		return fmt.Errorf("demo: reentrant write was accepted")
	}
	info(w, "rejected: %s", errors.Classify(err).FormatCompact())

	fmt.Fprintln(w, "Cancelling during a pass")
	calls, live := demoCancelInPass()
	info(w, "calls %v, %d subscribers left", calls, live)

	fmt.Fprintln(w, "Reading before the first set")
	v, err := demoUninit()
	if err != nil {
		return err
	}
	info(w, "after set: %s", v)

	fmt.Fprintln(w, "Derived cells")
	info(w, "doubled evens %v", demoDerived())

	success(w, "all contracts held")
	return nil
}

// demoScenario subscribes B from inside A's callback for 10.
func demoScenario() (a, b []int) {
	cell := signal.New(0, signal.WithName("scenario"))
	cell.SubscribeForever(func(n int) {
		a = append(a, n)
		if n == 10 {
			cell.SubscribeForever(func(n int) { b = append(b, n) })
		}
	})
	cell.Set(5)
	cell.Set(10)
	cell.Set(15)
	return a, b
}

func demoReentrantWrite() error {
	cell := signal.New(0, signal.WithName("counter"))
	var err error
	cell.SubscribeForever(func(n int) {
		if n == 1 {
			err = cell.TrySet(n + 1)
		}
	})
	cell.Set(1)
	return err
}

// demoCancelInPass has the second of three subscribers cancel itself.
func demoCancelInPass() ([]string, int) {
	cell := signal.New(0, signal.WithName("tombstones"))
	var calls []string

	cell.Subscribe(func(n int) { calls = append(calls, fmt.Sprintf("first(%d)", n)) })
	cell.SubscribeWithCancel(func(n int, u *signal.Unsubscriber[int]) {
		calls = append(calls, fmt.Sprintf("second(%d)", n))
		if n == 1 {
			u.Cancel()
		}
	})
	cell.Subscribe(func(n int) { calls = append(calls, fmt.Sprintf("third(%d)", n)) })
	calls = calls[:0]

	cell.Set(1)
	cell.Set(2)
	return calls, cell.Subscribers()
}

func demoUninit() (string, error) {
	cell := signal.Uninit[string](signal.WithName("greeting"))
	if _, err := cell.TryGet(); err == nil {
		return "", fmt.Errorf("demo: uninitialized read succeeded")
	}
	cell.Set("hello")
	return cell.TryGet()
}

func demoDerived() []int {
	src := signal.New(1)
	evens := signal.Filter(src.ReadOnly(), func(n int) bool { return n%2 == 0 })
	doubled := signal.Map[int, int](evens, func(n int) int { return n * 2 })
	defer evens.Close()
	defer doubled.Close()

	var seen []int
	doubled.SubscribeForever(func(n int) { seen = append(seen, n) })
	for n := 2; n <= 5; n++ {
		src.Set(n)
	}
	return seen
}
