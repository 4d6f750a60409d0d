package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

// exerciseStore runs the behaviour every driver shares.
func exerciseStore(t *testing.T, store domain.BlobStore) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "I00000001.jpg", strings.NewReader("first"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "I00000001.jpg", info.Key)
	assert.EqualValues(t, 5, info.Size)

	// Put overwrites.
	_, err = store.Put(ctx, "I00000001.jpg", strings.NewReader("second!"), "image/jpeg")
	require.NoError(t, err)

	rc, got, err := store.Get(ctx, "I00000001.jpg")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "second!", string(body))
	assert.EqualValues(t, 7, got.Size)

	_, err = store.Put(ctx, "I00000002.jpg", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)
	_, err = store.Put(ctx, "other.txt", strings.NewReader("y"), "text/plain")
	require.NoError(t, err)

	listed, err := store.List(ctx, "I0")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "I00000001.jpg", listed[0].Key)
	assert.Equal(t, "I00000002.jpg", listed[1].Key)

	deleted, err := store.Delete(ctx, "I00000001.jpg")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, "I00000001.jpg")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Head(ctx, "I00000001.jpg")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "expected not found, got %v", err)

	_, _, err = store.Get(ctx, "missing.jpg")
	assert.True(t, errors.Is(err, domain.ErrNotFound), "expected not found, got %v", err)
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.jpg", strings.NewReader("x"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = store.Put(context.Background(), "/etc/passwd", strings.NewReader("x"), "")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, store.Driver())

	store, err = Open(ctx, Config{Driver: DriverFilesystem, Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, store.Driver())

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Driver: DriverS3})
	assert.Error(t, err, "s3 without a bucket must fail")
}
