package corpus

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const snapshotCacheKey = "corpus:active"

var _ Repository = (*Snapshotter)(nil)

// Snapshotter caches the active POI snapshot for a short TTL so a burst of
// requests scores the same immutable snapshot instead of hitting the
// database per call. Similarity lookups pass straight through.
type Snapshotter struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewSnapshotter wraps repo with a snapshot cache.
func NewSnapshotter(repo Repository, ttl time.Duration, logger *slog.Logger) *Snapshotter {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Snapshotter{
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// GetActivePOIs returns the cached snapshot, refreshing it on expiry.
func (s *Snapshotter) GetActivePOIs(ctx context.Context) ([]types.POIDetailedInfo, error) {
	if cached, ok := s.cache.Get(snapshotCacheKey); ok {
		return cached.([]types.POIDetailedInfo), nil
	}
	pois, err := s.repo.GetActivePOIs(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(snapshotCacheKey, pois)
	s.logger.DebugContext(ctx, "refreshed corpus snapshot cache", slog.Int("pois", len(pois)))
	return pois, nil
}

// SimilarPOIs delegates to the underlying repository.
func (s *Snapshotter) SimilarPOIs(ctx context.Context, vector []float32, k int) (map[uuid.UUID]float64, error) {
	return s.repo.SimilarPOIs(ctx, vector, k)
}

// Invalidate drops the cached snapshot, forcing a reload on the next call.
func (s *Snapshotter) Invalidate() {
	s.cache.Delete(snapshotCacheKey)
}
