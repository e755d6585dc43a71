package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapshotUnknownSession(t *testing.T) {
	store := newTestStore()
	cc := store.Snapshot(uuid.New())
	require.NotNil(t, cc)
	assert.Empty(t, cc.RecentPOIIDs)
	assert.Empty(t, cc.CategoryInterests)
}

func TestRecordShownPOIs(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()

	first := []uuid.UUID{uuid.New(), uuid.New()}
	second := []uuid.UUID{uuid.New()}

	store.RecordShownPOIs(sessionID, first)
	store.RecordShownPOIs(sessionID, second)

	cc := store.Snapshot(sessionID)
	require.Len(t, cc.RecentPOIIDs, 3)
	// most recent first
	assert.Equal(t, second[0], cc.RecentPOIIDs[0])
	assert.Equal(t, first[0], cc.RecentPOIIDs[1])
	assert.Equal(t, first[1], cc.RecentPOIIDs[2])
}

func TestRecordShownPOIsTrimsHistory(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()

	for i := 0; i < maxRecentHistory+20; i++ {
		store.RecordShownPOIs(sessionID, []uuid.UUID{uuid.New()})
	}

	cc := store.Snapshot(sessionID)
	assert.Len(t, cc.RecentPOIIDs, maxRecentHistory)
}

func TestRecordInterestClamped(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()

	for i := 0; i < 15; i++ {
		store.RecordInterest(sessionID, types.CategoryBeach, 0.1)
	}
	cc := store.Snapshot(sessionID)
	assert.InDelta(t, 1.0, cc.InterestFor(types.CategoryBeach), 1e-9)

	store.RecordInterest(sessionID, types.CategoryBeach, -5)
	cc = store.Snapshot(sessionID)
	assert.Zero(t, cc.InterestFor(types.CategoryBeach))
}

func TestSetGeoFocus(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()

	focus := types.GeoPoint{Latitude: 19.3373, Longitude: -81.3795}
	store.SetGeoFocus(sessionID, focus)

	cc := store.Snapshot(sessionID)
	require.NotNil(t, cc.GeoFocus)
	assert.Equal(t, focus, *cc.GeoFocus)
}

func TestSnapshotIsACopy(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()
	store.RecordInterest(sessionID, types.CategoryBeach, 0.5)

	cc := store.Snapshot(sessionID)
	cc.CategoryInterests[types.CategoryBeach] = 0
	cc.RecentPOIIDs = append(cc.RecentPOIIDs, uuid.New())

	fresh := store.Snapshot(sessionID)
	assert.InDelta(t, 0.5, fresh.InterestFor(types.CategoryBeach), 1e-9)
	assert.Empty(t, fresh.RecentPOIIDs)
}

func TestConcurrentSnapshotAndMutate(t *testing.T) {
	store := newTestStore()
	sessionID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.RecordInterest(sessionID, types.CategoryBeach, 0.01)
				store.RecordShownPOIs(sessionID, []uuid.UUID{uuid.New()})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cc := store.Snapshot(sessionID)
				_ = cc.InterestFor(types.CategoryBeach)
				_ = cc.IsSessionRecent(sessionID)
			}
		}()
	}
	wg.Wait()

	cc := store.Snapshot(sessionID)
	assert.InDelta(t, 1.0, cc.InterestFor(types.CategoryBeach), 1e-9)
	assert.Len(t, cc.RecentPOIIDs, maxRecentHistory)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := newTestStore()
	a, b := uuid.New(), uuid.New()

	store.RecordInterest(a, types.CategoryNightlife, 0.8)

	assert.Zero(t, store.Snapshot(b).InterestFor(types.CategoryNightlife))
	assert.InDelta(t, 0.8, store.Snapshot(a).InterestFor(types.CategoryNightlife), 1e-9)
}
