package application

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/atvirokodosprendimai/assettrack/internal/metrics"
	"github.com/atvirokodosprendimai/assettrack/internal/validation"
)

const (
	stagingSuffix   = ".part"
	uploadExtension = ".jpg"
	uploadURLPrefix = "uploads/"
)

type ChunkInput struct {
	ImageID     string `json:"imageId" validate:"blobkey"`
	Chunk       string `json:"chunk" validate:"required"`
	ChunkIndex  int    `json:"chunkIndex" validate:"gte=0"`
	TotalChunks int    `json:"totalChunks" validate:"gte=1"`
}

// ChunkResult carries the public path of the image once the last chunk arrived.
type ChunkResult struct {
	Complete  bool
	ImagePath string
}

// UploadChunk appends one base64 chunk to the staging file of an image. The
// first chunk restarts the file and the last one moves it into the blob store
// as <imageId>.jpg.
func (s *InventoryService) UploadChunk(ctx context.Context, in ChunkInput) (ChunkResult, error) {
	if err := check(in); err != nil {
		return ChunkResult{}, err
	}
	if in.ChunkIndex >= in.TotalChunks {
		return ChunkResult{}, domain.Validation("chunkIndex must be less than totalChunks")
	}
	data, err := decodeChunk(in.Chunk)
	if err != nil {
		return ChunkResult{}, domain.Validation("chunk must be valid base64")
	}

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return ChunkResult{}, domain.Storage(err)
	}
	staged := filepath.Join(s.stagingDir, in.ImageID+stagingSuffix)

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if in.ChunkIndex == 0 {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(staged, flags, 0o644)
	if err != nil {
		return ChunkResult{}, domain.Storage(err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ChunkResult{}, domain.Storage(err)
	}
	if err := f.Close(); err != nil {
		return ChunkResult{}, domain.Storage(err)
	}
	metrics.UploadChunks.Inc()

	if in.ChunkIndex != in.TotalChunks-1 {
		return ChunkResult{}, nil
	}

	key := in.ImageID + uploadExtension
	info, err := s.finalizeUpload(ctx, staged, key)
	if err != nil {
		return ChunkResult{}, err
	}
	metrics.RecordUploadFinalized(s.blobs.Driver(), info.Size)
	logging.Ctx(ctx).Info().Str("key", key).Int64("size", info.Size).Str("driver", s.blobs.Driver()).Msg("upload finalized")
	return ChunkResult{Complete: true, ImagePath: uploadURLPrefix + key}, nil
}

func (s *InventoryService) finalizeUpload(ctx context.Context, staged, key string) (domain.BlobInfo, error) {
	f, err := os.Open(staged)
	if err != nil {
		return domain.BlobInfo{}, domain.Storage(err)
	}
	info, err := s.blobs.Put(ctx, key, f, "image/jpeg")
	_ = f.Close()
	if err != nil {
		metrics.BlobErrors.WithLabelValues("put").Inc()
		return domain.BlobInfo{}, err
	}
	if err := os.Remove(staged); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Ctx(ctx).Warn().Err(err).Str("path", staged).Msg("remove staging file")
	}
	return info, nil
}

// SweepStaging removes staging files untouched for longer than staleAfter.
func (s *InventoryService) SweepStaging(ctx context.Context, staleAfter time.Duration) (int, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := s.now().Add(-staleAfter)
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), stagingSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.stagingDir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Ctx(ctx).Warn().Err(err).Str("file", e.Name()).Msg("sweep staging file")
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.StagingSwept.Add(float64(removed))
	}
	return removed, nil
}

// stripDataURI drops a "data:...;base64," header some clients send on the first chunk.
func stripDataURI(chunk string) string {
	if strings.HasPrefix(chunk, "data:") {
		if i := strings.Index(chunk, ","); i >= 0 {
			return chunk[i+1:]
		}
	}
	return chunk
}

// decodeChunk accepts padded or unpadded base64 with embedded whitespace.
func decodeChunk(chunk string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, stripDataURI(chunk))
	if data, err := base64.StdEncoding.DecodeString(clean); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
}

// OpenUpload opens a stored upload by its file name. The caller closes the reader.
func (s *InventoryService) OpenUpload(ctx context.Context, key string) (io.ReadCloser, domain.BlobInfo, error) {
	if !validation.BlobKey(key) {
		return nil, domain.BlobInfo{}, domain.NotFound("upload %s not found", key)
	}
	return s.blobs.Get(ctx, key)
}
