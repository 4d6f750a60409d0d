package application

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadChunkAssemblesImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payload := []byte("jpeg-bytes-split-in-three")
	parts := [][]byte{payload[:5], payload[5:12], payload[12:]}

	for i, part := range parts {
		res, err := f.svc.UploadChunk(ctx, ChunkInput{
			ImageID:     "img-42",
			Chunk:       base64.StdEncoding.EncodeToString(part),
			ChunkIndex:  i,
			TotalChunks: len(parts),
		})
		require.NoError(t, err)
		if i < len(parts)-1 {
			assert.False(t, res.Complete)
			continue
		}
		assert.True(t, res.Complete)
		assert.Equal(t, "uploads/img-42.jpg", res.ImagePath)
	}

	rc, info, err := f.svc.OpenUpload(ctx, "img-42.jpg")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "image/jpeg", info.ContentType)

	_, err = os.Stat(filepath.Join(f.svc.stagingDir, "img-42.part"))
	assert.True(t, os.IsNotExist(err), "staging file is removed after finalize")
}

func TestUploadChunkRestartsOnFirstChunk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.UploadChunk(ctx, ChunkInput{ImageID: "img", Chunk: base64.StdEncoding.EncodeToString([]byte("stale")), ChunkIndex: 0, TotalChunks: 2})
	require.NoError(t, err)
	_, err = f.svc.UploadChunk(ctx, ChunkInput{ImageID: "img", Chunk: base64.StdEncoding.EncodeToString([]byte("fresh-")), ChunkIndex: 0, TotalChunks: 2})
	require.NoError(t, err)
	_, err = f.svc.UploadChunk(ctx, ChunkInput{ImageID: "img", Chunk: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("end")), ChunkIndex: 1, TotalChunks: 2})
	require.NoError(t, err)

	rc, _, err := f.blobs.Get(ctx, "img.jpg")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "fresh-end", string(got))
}

func TestUploadChunkValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []ChunkInput{
		{ImageID: "../etc/passwd", Chunk: "AAAA", ChunkIndex: 0, TotalChunks: 1},
		{ImageID: "img", Chunk: "", ChunkIndex: 0, TotalChunks: 1},
		{ImageID: "img", Chunk: "AAAA", ChunkIndex: 1, TotalChunks: 1},
		{ImageID: "img", Chunk: "not base64!", ChunkIndex: 0, TotalChunks: 1},
		{ImageID: "img", Chunk: "AAAA", ChunkIndex: 0, TotalChunks: 0},
	}
	for _, in := range cases {
		_, err := f.svc.UploadChunk(ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
	}

	_, _, err := f.svc.OpenUpload(ctx, "../secret")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUploadChunkAcceptsLooseBase64(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	chunks := []string{
		"YWJj\nZGVm",     // wrapped lines
		"Z2g",            // missing padding
		" aWpr bA== \r\n", // padded with stray spaces
	}
	for i, chunk := range chunks {
		_, err := f.svc.UploadChunk(ctx, ChunkInput{ImageID: "loose", Chunk: chunk, ChunkIndex: i, TotalChunks: len(chunks)})
		require.NoError(t, err, "chunk %d", i)
	}

	rc, _, err := f.blobs.Get(ctx, "loose.jpg")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghijkl", string(got))
}

func TestSweepStagingRemovesStaleParts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := f.svc.stagingDir
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stale := filepath.Join(dir, "old.part")
	fresh := filepath.Join(dir, "new.part")
	other := filepath.Join(dir, "keep.txt")
	for _, p := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	old := fixedNow.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(fresh, fixedNow, fixedNow))
	require.NoError(t, os.Chtimes(other, old, old))

	removed, err := f.svc.SweepStaging(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}
