package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocal(dir, "/uploads")
	ctx := context.Background()

	path, err := store.Put(ctx, "provider-abc.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/provider-abc.png", path)

	data, err := os.ReadFile(filepath.Join(dir, "provider-abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "provider-abc.png"))
	_, err = os.Stat(filepath.Join(dir, "provider-abc.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, store.Delete(ctx, "provider-abc.png"))
}

func TestLocal_RejectsBadInput(t *testing.T) {
	store := NewLocal(t.TempDir(), "/uploads/")
	ctx := context.Background()

	_, err := store.Put(ctx, "../escape.png", "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = store.Put(ctx, "a/b.png", "", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = store.Put(ctx, "empty.png", "", nil)
	assert.ErrorIs(t, err, ErrEmptyObject)

	path, err := store.Put(ctx, "requester-1.jpg", "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/requester-1.jpg", path)
}
