package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
)

const metaSuffix = ".meta"

// Filesystem stores each blob as a file under root with a JSON sidecar
// holding its content type and etag.
type Filesystem struct {
	root string
}

func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() string { return DriverFilesystem }

type metaFile struct {
	ContentType string `json:"content_type,omitempty"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size"`
}

func (s *Filesystem) paths(key string) (string, string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	data := filepath.Join(s.root, filepath.FromSlash(k))
	return data, data + metaSuffix, nil
}

func (s *Filesystem) Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.BlobInfo, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return domain.BlobInfo{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return domain.BlobInfo{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		_ = tmp.Close()
		return domain.BlobInfo{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.BlobInfo{}, err
	}
	if err := tmp.Close(); err != nil {
		return domain.BlobInfo{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return domain.BlobInfo{}, err
	}

	mf := metaFile{ContentType: contentType, ETag: hex.EncodeToString(h.Sum(nil)), Size: size}
	b, err := json.Marshal(mf)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		return domain.BlobInfo{}, err
	}
	return s.Head(ctx, key)
}

func (s *Filesystem) Get(ctx context.Context, key string) (io.ReadCloser, domain.BlobInfo, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	dataPath, _, _ := s.paths(key)
	f, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.BlobInfo{}, notFound(key)
	}
	if err != nil {
		return nil, domain.BlobInfo{}, err
	}
	return f, info, nil
}

func (s *Filesystem) Head(_ context.Context, key string) (domain.BlobInfo, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return domain.BlobInfo{}, err
	}
	st, err := os.Stat(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.BlobInfo{}, notFound(key)
	}
	if err != nil {
		return domain.BlobInfo{}, err
	}
	info := domain.BlobInfo{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()}
	// Files dropped into the root by hand have no sidecar.
	if b, err := os.ReadFile(metaPath); err == nil {
		var mf metaFile
		if err := json.Unmarshal(b, &mf); err == nil {
			info.ContentType = mf.ContentType
			info.ETag = mf.ETag
		}
	}
	return info, nil
}

func (s *Filesystem) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, err := s.paths(key)
	if err != nil {
		return false, err
	}
	if err := os.Remove(dataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	_ = os.Remove(metaPath)
	return true, nil
}

func (s *Filesystem) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	infos := make([]domain.BlobInfo, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metaSuffix) || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := s.Head(ctx, key)
		if err != nil {
			return err
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
