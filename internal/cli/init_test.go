package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"pocketbook/internal/log"
)

func TestFirstRunCleanup(t *testing.T) {
	dir := t.TempDir()
	resets := 0
	reset := func() { resets++ }

	ran, err := FirstRunCleanup(dir, reset, log.Discard())
	if err != nil || !ran {
		t.Fatalf("first call: ran=%v err=%v", ran, err)
	}
	if _, err := os.Stat(filepath.Join(dir, FirstRunMarker)); err != nil {
		t.Fatalf("marker not written: %v", err)
	}

	ran, err = FirstRunCleanup(dir, reset, log.Discard())
	if err != nil || ran {
		t.Fatalf("second call: ran=%v err=%v", ran, err)
	}
	if resets != 1 {
		t.Fatalf("reset ran %d times, want 1", resets)
	}
}

func TestFirstRunCleanupMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	ran, err := FirstRunCleanup(dir, func() {}, log.Discard())
	if !ran || err == nil {
		t.Fatalf("expected reset to run and the marker write to fail, ran=%v err=%v", ran, err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("POCKETBOOK_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POCKETBOOK_TEST_VALUE", "")
	os.Unsetenv("POCKETBOOK_TEST_VALUE")

	LoadEnvFile(path)
	if got := os.Getenv("POCKETBOOK_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("got %q", got)
	}

	LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	if cfg, err := LoadConfig(); err != nil || cfg.StorageBackend != "sqlite" {
		t.Fatalf("LoadConfig = %+v, %v", cfg, err)
	}

	t.Setenv("PORT", "99999")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error for out of range port")
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("bogus", "json")
	if logger == nil || logger.Component() != log.ComponentApp {
		t.Fatalf("unexpected logger: %+v", logger)
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) || logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("unknown level should fall back to info")
	}
}

func TestShutdownRunsCleanupBeforeCancel(t *testing.T) {
	sig := make(chan os.Signal, 1)
	cleaned := make(chan struct{})
	ctx, done := shutdownOn(sig, log.Discard(), time.Second, func(ctx context.Context) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("cleanup context has no deadline")
		}
		close(cleaned)
	})

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before a signal arrived")
	default:
	}

	sig <- syscall.SIGTERM
	WaitForShutdown(ctx, done)

	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run")
	}
}
