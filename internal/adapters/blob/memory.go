package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

type memoryEntry struct {
	info domain.BlobInfo
	data []byte
}

// Memory is a process-local store for tests.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{objs: make(map[string]memoryEntry)}
}

func (s *Memory) Driver() string { return DriverMemory }

func (s *Memory) Put(_ context.Context, key string, r io.Reader, contentType string) (domain.BlobInfo, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	sum := sha256.Sum256(b)
	info := domain.BlobInfo{
		Key:          k,
		Size:         int64(len(b)),
		ContentType:  contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: time.Now().UTC(),
	}

	s.mu.Lock()
	s.objs[k] = memoryEntry{info: info, data: b}
	s.mu.Unlock()
	return info, nil
}

func (s *Memory) Get(_ context.Context, key string) (io.ReadCloser, domain.BlobInfo, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.BlobInfo{}, notFound(key)
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return io.NopCloser(bytes.NewReader(data)), obj.info, nil
}

func (s *Memory) Head(_ context.Context, key string) (domain.BlobInfo, error) {
	s.mu.RLock()
	obj, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return domain.BlobInfo{}, notFound(key)
	}
	return obj.info, nil
}

func (s *Memory) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objs[key]
	delete(s.objs, key)
	return ok, nil
}

func (s *Memory) List(_ context.Context, prefix string) ([]domain.BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BlobInfo, 0, len(s.objs))
	for k, v := range s.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, v.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
