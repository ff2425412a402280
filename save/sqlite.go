package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one compressed snapshot per slot in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("save: open sqlite: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("save: open sqlite: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("save: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("save: open sqlite: %w", err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS slots (
		slot INTEGER PRIMARY KEY,
		saved_at TEXT NOT NULL,
		level TEXT NOT NULL,
		snapshot BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("save: open sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot int) (*Data, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM slots WHERE slot = ?`, slot).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("save: load slot %d: %w", slot, err)
	}
	return Decode(blob)
}

func (s *SQLiteStore) Save(ctx context.Context, slot int, data *Data) error {
	blob, err := Encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO slots(slot, saved_at, level, snapshot) VALUES(?, ?, ?, ?)`,
		slot, time.Now().UTC().Format(time.RFC3339), data.Level, blob)
	if err != nil {
		return fmt.Errorf("save: write slot %d: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, slot int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("save: clear slot %d: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
