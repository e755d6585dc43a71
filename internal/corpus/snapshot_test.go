package corpus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

type countingRepo struct {
	snapshotCalls int
	similarCalls  int
	pois          []types.POIDetailedInfo
}

func (r *countingRepo) GetActivePOIs(ctx context.Context) ([]types.POIDetailedInfo, error) {
	r.snapshotCalls++
	return r.pois, nil
}

func (r *countingRepo) SimilarPOIs(ctx context.Context, vector []float32, k int) (map[uuid.UUID]float64, error) {
	r.similarCalls++
	return map[uuid.UUID]float64{}, nil
}

func TestSnapshotterCachesSnapshot(t *testing.T) {
	repo := &countingRepo{pois: []types.POIDetailedInfo{{ID: uuid.New(), Name: "A"}}}
	s := NewSnapshotter(repo, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	first, err := s.GetActivePOIs(ctx)
	require.NoError(t, err)
	second, err := s.GetActivePOIs(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.snapshotCalls)

	t.Run("invalidate forces a reload", func(t *testing.T) {
		s.Invalidate()
		_, err := s.GetActivePOIs(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, repo.snapshotCalls)
	})
}

func TestSnapshotterSimilarPassthrough(t *testing.T) {
	repo := &countingRepo{}
	s := NewSnapshotter(repo, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := s.SimilarPOIs(context.Background(), []float32{0.1}, 10)
	require.NoError(t, err)
	_, err = s.SimilarPOIs(context.Background(), []float32{0.1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.similarCalls)
}
