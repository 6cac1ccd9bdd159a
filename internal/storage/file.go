package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"pocketbook/internal/core"
)

// DefaultFileName is the snapshot file inside the data dir.
const DefaultFileName = "transactions.json"

// FileBackend keeps the snapshot as a JSON array in a single file.
type FileBackend struct {
	path string
}

var _ Backend = (*FileBackend)(nil)

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Location implements Backend.
func (b *FileBackend) Location() string {
	return b.path
}

// Load implements Backend. A missing file is ErrNoState; unreadable or
// malformed content is returned as an error for the caller to log.
func (b *FileBackend) Load(ctx context.Context) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return txs, nil
}

// Save implements Backend. The file is written to a temporary sibling,
// synced and renamed over the target.
func (b *FileBackend) Save(ctx context.Context, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := renameio.WriteFile(b.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	return nil
}
