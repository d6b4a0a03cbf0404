package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchConfig_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdchat-server.conf")
	if err := os.WriteFile(path, []byte("listen 0.0.0.0:4000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		watchConfig(ctx, path, newDiscardLogger(), func() { reloads <- struct{}{} })
		close(done)
	}()

	// Keep rewriting until the watcher picks a change up, so the test does
	// not depend on the watcher being registered before the first write.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(150 * time.Millisecond)
	defer tick.Stop()
waitReload:
	for {
		select {
		case <-reloads:
			break waitReload
		case <-tick.C:
			if err := os.WriteFile(path, []byte("listen 0.0.0.0:4001\n"), 0644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("expected a reload after the config changed")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected watcher to stop on context cancel")
	}
}

func TestWatchConfig_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdchat-server.conf")
	if err := os.WriteFile(path, []byte("listen 0.0.0.0:4000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		watchConfig(ctx, path, newDiscardLogger(), func() { reloads <- struct{}{} })
		close(done)
	}()

	// Writes to other files in the watched directory must not trigger a
	// reload.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(150 * time.Millisecond)
	}

	select {
	case <-reloads:
		t.Fatal("unexpected reload for a sibling file")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("expected watcher to stop on context cancel")
	}
}
