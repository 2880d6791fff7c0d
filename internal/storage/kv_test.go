package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "pocketwise/internal/log"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "txns", "[1]"))
	require.NoError(t, kv.Set(ctx, "txns", "[1,2]"))

	v, ok, err := kv.Get(ctx, "txns")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", v)
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	exerciseKV(t, kv)

	data, err := os.ReadFile(filepath.Join(dir, "nested", "txns.json"))
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, kv.Set(context.Background(), "../escape", "x"))
	_, _, err = kv.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestSQLiteKV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "pocketwise.db")
	kv, err := NewSQLiteKV(path, nil)
	require.NoError(t, err)
	exerciseKV(t, kv)

	// Reopening runs migrations again without error and keeps the data.
	require.NoError(t, kv.Close())
	reopened, err := NewSQLiteKV(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), "txns")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,2]", v)
}

func TestMigrateBlobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.db")

	version, err := MigrateBlobs(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	// Already current.
	version, err = MigrateBlobs(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestSQLiteKVLogsThroughComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Level: slog.LevelDebug, Component: applog.ComponentBackend})

	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "log.db"), logger)
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set(context.Background(), "txns", "[]"))
	out := buf.String()
	assert.Contains(t, out, "Blob saved to SQLite")
	assert.Contains(t, out, "component=storage")
	assert.Contains(t, out, "storage_key=txns")
}
