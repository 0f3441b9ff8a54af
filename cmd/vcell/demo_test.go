package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestDemoScenario(t *testing.T) {
	a, b := demoScenario()
	if !slices.Equal(a, []int{0, 5, 10, 15}) {
		t.Errorf("A = %v", a)
	}
	if !slices.Equal(b, []int{10, 15}) {
		t.Errorf("B = %v", b)
	}
}

func TestDemoCancelInPass(t *testing.T) {
	calls, live := demoCancelInPass()
	want := []string{"first(1)", "second(1)", "third(1)", "first(2)", "third(2)"}
	if !slices.Equal(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if live != 2 {
		t.Errorf("subscribers = %d, want 2", live)
	}
}

func TestDemoDerived(t *testing.T) {
	if got := demoDerived(); !slices.Equal(got, []int{4, 8}) {
		t.Errorf("derived = %v, want [4 8]", got)
	}
}

func TestRunDemo(t *testing.T) {
	var buf bytes.Buffer
	if err := runDemo(&buf); err != nil {
		t.Fatalf("runDemo() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"A saw [0 5 10 15]",
		"B saw [10 15]",
		"E001",
		"after set: hello",
		"all contracts held",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionShort(t *testing.T) {
	cmd := rootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}
