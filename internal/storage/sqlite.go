package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps the snapshot in a SQLite database. Each Save
// replaces every row inside one SQL transaction.
type SQLiteBackend struct {
	db            *sql.DB
	path          string
	schemaVersion uint
}

var _ Backend = (*SQLiteBackend)(nil)

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteBackend{db: db, path: dbPath, schemaVersion: version}, nil
}

// Location implements Backend.
func (b *SQLiteBackend) Location() string {
	return "sqlite:" + b.path
}

// SchemaVersion is the migration version the database was opened at.
func (b *SQLiteBackend) SchemaVersion() uint {
	return b.schemaVersion
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Load implements Backend.
func (b *SQLiteBackend) Load(ctx context.Context) ([]core.Transaction, error) {
	var savedAt string
	err := b.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot meta: %w", err)
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT id, occurred_at, amount, category_key, note, payment
		FROM transactions
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var (
			id, occurredAt, amount string
			category, note, pay   sql.NullString
		)
		if err := rows.Scan(&id, &occurredAt, &amount, &category, &note, &pay); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx, err := decodeRow(id, occurredAt, amount)
		if err != nil {
			return nil, err
		}
		tx.CategoryKey = category.String
		tx.Note = note.String
		tx.Payment = pay.String
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func decodeRow(id, occurredAt, amount string) (core.Transaction, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode id %q: %w", id, err)
	}
	date, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode date of %s: %w", id, err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of %s: %w", id, err)
	}
	return core.Transaction{ID: uid, Date: date, Amount: amt}, nil
}

// Save implements Backend.
func (b *SQLiteBackend) Save(ctx context.Context, txs []core.Transaction) (err error) {
	sqlTx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if _, err = sqlTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, occurred_at, amount, category_key, note, payment, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tx := range txs {
		_, err = stmt.ExecContext(ctx,
			tx.ID.String(),
			tx.Date.Format(time.RFC3339Nano),
			tx.Amount.String(),
			nullable(tx.CategoryKey),
			nullable(tx.Note),
			nullable(tx.Payment),
			i,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
		}
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, saved_at, row_count) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, row_count = excluded.row_count`,
		time.Now().UTC().Format(time.RFC3339Nano), len(txs))
	if err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
