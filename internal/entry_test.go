package internal

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Run must come up from a default-style config on an empty working
// directory: the attachments directory does not exist yet and has to be
// created before the blob store opens it.
func TestRun_CreatesAttachmentsDir(t *testing.T) {
	dir := t.TempDir()
	attachments := filepath.Join(dir, "attachments")

	cfg := &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelError,
			HTTP:     HTTPConfig{Port: 0}, // ephemeral port
		},
		SQLite:      SQLiteConfig{Path: filepath.Join(dir, "test.db")},
		Auth:        AuthConfig{Mode: AuthModeDisabled},
		Attachments: AttachmentsConfig{Path: attachments},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg))
	}()

	// Give startup a moment, then shut down.
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if info, err := os.Stat(attachments); err != nil || !info.IsDir() {
		t.Errorf("attachments dir not created: %v", err)
	}
}
