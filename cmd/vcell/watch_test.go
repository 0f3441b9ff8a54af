package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/vcell/internal/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vcell.yaml")
	if err := os.WriteFile(path, []byte("name: one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, &out, io.Discard) }()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "revision 2: name=two") {
		if time.Now().After(deadline) {
			t.Fatalf("second revision never printed:\n%s", out.String())
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, []byte("name: two\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runWatch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runWatch did not return")
	}

	if !strings.HasPrefix(out.String(), "revision 1: name=one") {
		t.Errorf("first line = %q", out.String())
	}
}
