package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

func sampleTransactions(n int) []core.Transaction {
	base := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	txs := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tx := core.Transaction{
			ID:     uuid.New(),
			Date:   base.Add(time.Duration(i%3) * time.Hour),
			Amount: decimal.NewFromInt(int64(-100 * (i + 1))),
		}
		if i%2 == 0 {
			tx.CategoryKey = "food"
			tx.Payment = "Card"
		} else {
			tx.Amount = tx.Amount.Neg()
			tx.Note = "Salary"
		}
		txs = append(txs, tx)
	}
	core.Sort(txs)
	return txs
}

func assertSameTransactions(t *testing.T, got, want []core.Transaction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ID != w.ID || !g.Date.Equal(w.Date) || !g.Amount.Equal(w.Amount) ||
			g.CategoryKey != w.CategoryKey || g.Note != w.Note || g.Payment != w.Payment {
			t.Fatalf("position %d: got %+v want %+v", i, g, w)
		}
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()
	sq, err := NewSQLiteBackend(filepath.Join(dir, "pocketbook.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Backend{
		"file":   NewFileBackend(filepath.Join(dir, "nested", DefaultFileName)),
		"sqlite": sq,
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Load(ctx); !errors.Is(err, ErrNoState) {
				t.Fatalf("fresh backend: expected ErrNoState, got %v", err)
			}

			want := sampleTransactions(25)
			if err := b.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			assertSameTransactions(t, got, want)
			if !core.IsSorted(got) {
				t.Fatalf("loaded snapshot lost its order")
			}

			// A smaller snapshot fully replaces the bigger one.
			if err := b.Save(ctx, want[:3]); err != nil {
				t.Fatalf("save smaller: %v", err)
			}
			got, _ = b.Load(ctx)
			assertSameTransactions(t, got, want[:3])
		})
	}
}

func TestBackendsSavedEmptyIsState(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := b.Save(ctx, nil); err != nil {
				t.Fatalf("save empty: %v", err)
			}
			got, err := b.Load(ctx)
			if err != nil {
				t.Fatalf("load after empty save: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty snapshot, got %d", len(got))
			}
		})
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte{0xff, 0x00, '{', 'x'}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewFileBackend(path).Load(context.Background())
	if err == nil || errors.Is(err, ErrNoState) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileBackendWritesJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	b := NewFileBackend(path)
	if err := b.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("empty snapshot = %q, want []", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestResolveDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := ResolveDataDir(dir)
	if err != nil || got != dir {
		t.Fatalf("ResolveDataDir(%q) = %q, %v", dir, got, err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	got, err = ResolveDataDir("")
	if err != nil {
		t.Fatalf("default dir: %v", err)
	}
	if filepath.Base(got) != AppFolder {
		t.Fatalf("default dir %q should end in %s", got, AppFolder)
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pocketbook.db")
	first, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if first.SchemaVersion() != 1 {
		t.Fatalf("schema version = %d, want 1", first.SchemaVersion())
	}
	if err := first.Save(context.Background(), sampleTransactions(2)); err != nil {
		t.Fatalf("save: %v", err)
	}
	first.Close()

	version, err := RunMigrations(path)
	if err != nil || version != 1 {
		t.Fatalf("rerun migrations = %d, %v", version, err)
	}

	second, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, err := second.Load(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("reload = %d, %v", len(got), err)
	}
}

func TestFileBackendIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := NewFileBackend(path).Save(context.Background(), sampleTransactions(1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}
}
