// Package storage persists full snapshots of the transaction list.
//
// A backend never stores increments: every Save replaces the previous
// snapshot atomically, and Load returns the last complete snapshot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pocketbook/internal/core"
)

// AppFolder is the application-scoped subfolder of the user config dir.
const AppFolder = "pocketbook"

// ErrNoState is returned by Load when nothing was ever saved.
var ErrNoState = errors.New("no persisted state")

// Backend is a snapshot store for the transaction list.
type Backend interface {
	// Load returns the last saved snapshot or ErrNoState.
	Load(ctx context.Context) ([]core.Transaction, error)
	// Save atomically replaces the snapshot with txs.
	Save(ctx context.Context, txs []core.Transaction) error
	// Location describes where the snapshot lives, for logs.
	Location() string
}

// ResolveDataDir returns dir if set, otherwise the application folder under
// the platform's per-user config location. The directory is created.
func ResolveDataDir(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			home, herr := os.UserHomeDir()
			if herr != nil {
				return "", fmt.Errorf("resolve data dir: %w", err)
			}
			base = home
		}
		dir = filepath.Join(base, AppFolder)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}
