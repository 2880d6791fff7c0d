package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	applog "pocketwise/internal/log"
)

// SQLiteKV stores blobs in a single-table SQLite database.
type SQLiteKV struct {
	db     *sql.DB
	logger *applog.Logger
}

// NewSQLiteKV opens dbPath and migrates it. A nil logger discards output.
func NewSQLiteKV(dbPath string, logger *applog.Logger) (*SQLiteKV, error) {
	if logger == nil {
		logger = applog.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := MigrateBlobs(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteKV{db: db, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (s *SQLiteKV) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get blob %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("set blob %s: %w", key, err)
	}

	s.logger.DebugContext(ctx, "Blob saved to SQLite",
		applog.FieldKey, key, applog.FieldOperation, applog.OpSave, "bytes", len(value))
	return nil
}
