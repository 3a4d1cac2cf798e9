package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// stateKey is the single row under which the learner's state lives.
const stateKey = "baseline"

// SQLiteBlobStore persists the learner's state as a single JSON blob row.
type SQLiteBlobStore struct {
	db *sql.DB
}

// NewSQLiteBlobStore creates a blob store backed by the shared database.
func NewSQLiteBlobStore(db *sql.DB) *SQLiteBlobStore {
	return &SQLiteBlobStore{db: db}
}

// Load implements BlobStore.
func (b *SQLiteBlobStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM baseline_state WHERE key = ?`, stateKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load baseline state: %w", err)
	}
	return data, nil
}

// Save implements BlobStore.
func (b *SQLiteBlobStore) Save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO baseline_state (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		stateKey, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save baseline state: %w", err)
	}
	return nil
}
