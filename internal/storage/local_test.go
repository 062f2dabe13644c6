package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesInChunks(t *testing.T) {
	store := &LocalStore{Dir: t.TempDir(), BaseURL: "/uploads/files", ChunkSize: 100}
	data := bytes.Repeat([]byte{0xAB}, 1024)

	var calls [][2]int
	url, err := store.Save(context.Background(), "a.png", data, func(written, total int) {
		calls = append(calls, [2]int{written, total})
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/files/a.png", url)

	got, err := os.ReadFile(filepath.Join(store.Dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.Len(t, calls, 11) // ten full chunks plus the 24-byte tail
	prev := 0
	for _, c := range calls {
		assert.Equal(t, 1024, c[1])
		assert.Greater(t, c[0], prev)
		prev = c[0]
	}
	assert.Equal(t, 1024, calls[len(calls)-1][0])
}

func TestSaveOverwrites(t *testing.T) {
	store := &LocalStore{Dir: t.TempDir(), BaseURL: "/u"}

	_, err := store.Save(context.Background(), "x.jpg", []byte("first"), nil)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), "x.jpg", []byte("second"), nil)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(store.Dir, "x.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store := &LocalStore{Dir: dir, BaseURL: "/u"}

	_, err := store.Save(context.Background(), "x.webp", []byte("data"), nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "x.webp"))
	assert.NoError(t, err)
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	store := &LocalStore{Dir: t.TempDir(), BaseURL: "/u", ChunkSize: 4}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "x.png", []byte("some data"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
