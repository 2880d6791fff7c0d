package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketwise/internal/config"
	"pocketwise/internal/storage"
)

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
		want   any
	}{
		{"memory", Config{Type: MemoryBackend}, &storage.MemoryKV{}},
		{"file", Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")}, &storage.FileKV{}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "kv.db")}, &storage.SQLiteKV{}},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, res.Close()) })

			assert.IsType(t, tt.want, res.KV)
			require.NoError(t, res.KV.Set(ctx, "k", "v"))
			got, ok, err := res.KV.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", got)
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: FileBackend})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	app := config.Defaults()
	app.DataBackend = "sqlite"
	app.SQLiteDBPath = "/tmp/x.db"

	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/x.db", cfg.SQLiteDBPath)
	assert.Equal(t, app.DataDir, cfg.DataDirectory)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)

	app.DataBackend = "sheets"
	_, err = FromAppConfig(app)
	assert.Error(t, err)
}
