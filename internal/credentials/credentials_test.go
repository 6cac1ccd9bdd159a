package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	keyring.MockInit()
	return map[string]Store{
		"memory":  NewMemoryStore(),
		"keyring": NewKeyringStore("pocketbook-test"),
		"file":    NewFileStore(filepath.Join(t.TempDir(), "creds", "credentials.json")),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, found, err := s.Read("user"); err != nil || found {
				t.Fatalf("absent key: found=%v err=%v", found, err)
			}

			if err := s.Save("user", "000123.abc"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Save("user", "000456.def"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			v, found, err := s.Read("user")
			if err != nil || !found || v != "000456.def" {
				t.Fatalf("read = %q, %v, %v", v, found, err)
			}

			if err := s.Delete("user"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := s.Delete("user"); err != nil {
				t.Fatalf("delete absent: %v", err)
			}
			if _, found, _ := s.Read("user"); found {
				t.Fatalf("key still present after delete")
			}

			if err := s.Save("", "x"); !errors.Is(err, ErrEmptyKey) {
				t.Fatalf("expected ErrEmptyKey, got %v", err)
			}
		})
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := NewFileStore(path).Save("user", "id"); err != nil {
		t.Fatalf("save: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}

	reopened := NewFileStore(path)
	if v, found, err := reopened.Read("user"); err != nil || !found || v != "id" {
		t.Fatalf("value did not survive reopen: %q %v %v", v, found, err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewFileStore(path).Read("user"); err == nil {
		t.Fatalf("expected decode error")
	}
}
