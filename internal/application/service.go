package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/metrics"
	"github.com/atvirokodosprendimai/assettrack/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	ObjectsPageSize      = 5
	RecentActivityLimit  = 10
	NodeSearchLimit      = 5
	SuggestionLimit      = 5
	defaultStagingFolder = "uploads-staging"
)

type InventoryService struct {
	repo       domain.InventoryRepository
	blobs      domain.BlobStore
	stagingDir string
	now        func() time.Time
}

type Option func(*InventoryService)

// WithStagingDir sets where chunked uploads are assembled before they reach the blob store.
func WithStagingDir(dir string) Option {
	return func(s *InventoryService) {
		if strings.TrimSpace(dir) != "" {
			s.stagingDir = dir
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *InventoryService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInventoryService(repo domain.InventoryRepository, blobs domain.BlobStore, opts ...Option) *InventoryService {
	s := &InventoryService{
		repo:       repo,
		blobs:      blobs,
		stagingDir: defaultStagingFolder,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InventoryService) timestamp() string {
	return domain.FormatTime(s.now())
}

// allocate mints the next id of seq on repo, which must be the repository
// of the transaction that will insert it.
func allocate(ctx context.Context, repo domain.InventoryRepository, seq domain.Sequence) (string, error) {
	id, err := repo.NextID(ctx, seq)
	if err != nil {
		if errors.Is(err, domain.ErrAllocationConflict) {
			metrics.RecordAllocation(seq.Table, true)
		}
		return "", err
	}
	metrics.RecordAllocation(seq.Table, false)
	return id, nil
}

// check runs the request validator and reports failures as validation errors.
func check(input any) error {
	if err := validation.Struct(input); err != nil {
		return &domain.Error{Kind: domain.ErrValidation, Message: err.Error(), Err: err}
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newAccessToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	return input
}
