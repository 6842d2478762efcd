package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/pkg/config"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("\x89PNG fake image bytes")
	require.NoError(t, store.Put(ctx, "abc.png", bytes.NewReader(payload), int64(len(payload)), "image/png"))

	rc, err := store.Open(ctx, "abc.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, "abc.png"))
	_, err = os.Stat(store.Path("abc.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageMissingBlob(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "missing.mp4")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, store.Delete(context.Background(), "missing.mp4"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "../evil.png", bytes.NewReader(nil), 0, "image/png")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = store.Open(context.Background(), "..")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewSelectsDriver(t *testing.T) {
	local, err := New(config.StorageConfig{Driver: config.StorageDriverLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	remote, err := New(config.StorageConfig{Driver: config.StorageDriverMinio, Minio: config.MinioConfig{
		Endpoint: "localhost:9000", AccessKey: "key", SecretKey: "secret", Bucket: "compliance",
	}})
	require.NoError(t, err)
	assert.IsType(t, &MinioStorage{}, remote)

	_, err = New(config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestFullPath(t *testing.T) {
	assert.Equal(t, "uploads/a.png", fullPath("/uploads/", "a.png"))
	assert.Equal(t, "a.png", fullPath("", "a.png"))
}
