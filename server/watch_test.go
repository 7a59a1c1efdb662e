package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("max_sessions: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cw, err := NewConfigWatcher(path, discardLogger())
	if err != nil {
		t.Fatalf("NewConfigWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() { done <- cw.Run(ctx, func(c Config) { got <- c }) }()

	// Broken YAML is skipped, the next good write is applied
	os.WriteFile(path, []byte("arena: [\n"), 0o644)
	time.Sleep(3 * configDebounce)
	os.WriteFile(path, []byte("max_sessions: 7\n"), 0o644)

	select {
	case cfg := <-got:
		if cfg.MaxSessions != 7 {
			t.Errorf("expected max_sessions 7, got %d", cfg.MaxSessions)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config change not delivered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
