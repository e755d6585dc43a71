package scoring

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

var sevenMileBeach = types.GeoPoint{Latitude: 19.3373, Longitude: -81.3795}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makePOI(name string, cat types.Category, lat, lon, rating float64, reviews int) types.POIDetailedInfo {
	return types.POIDetailedInfo{
		ID:          uuid.New(),
		Name:        name,
		Category:    cat,
		Latitude:    lat,
		Longitude:   lon,
		Rating:      rating,
		ReviewCount: reviews,
		IsActive:    true,
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name    string
		rating  float64
		reviews int
		want    float64
	}{
		{name: "exceptional", rating: 4.8, reviews: 0, want: 1.0},
		{name: "excellent", rating: 4.5, reviews: 0, want: 0.85},
		{name: "good", rating: 4.0, reviews: 0, want: 0.7},
		{name: "fair", rating: 3.5, reviews: 0, want: 0.5},
		{name: "baseline", rating: 3.0, reviews: 0, want: 0.3},
		{name: "unrated", rating: 0, reviews: 0, want: 0.3},
		{name: "one review bonus", rating: 4.0, reviews: 50, want: 0.75},
		{name: "two review bonuses", rating: 4.0, reviews: 100, want: 0.8},
		{name: "three review bonuses", rating: 4.0, reviews: 500, want: 0.85},
		{name: "capped at one", rating: 4.9, reviews: 1000, want: 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, qualityScore(tt.rating, tt.reviews), 1e-9)
		})
	}
}

func TestGeographicScore(t *testing.T) {
	loc := &types.LocationConstraint{
		Name:     "seven mile beach",
		Center:   sevenMileBeach,
		RadiusKm: 3,
	}

	poiAtKm := func(km float64) *types.POIDetailedInfo {
		// ~1 degree latitude is ~111 km
		return &types.POIDetailedInfo{
			Latitude:  sevenMileBeach.Latitude + km/111.0,
			Longitude: sevenMileBeach.Longitude,
		}
	}

	tests := []struct {
		name string
		km   float64
		want float64
	}{
		{name: "inside radius", km: 1, want: 1.0},
		{name: "within twice the radius", km: 5, want: 0.7},
		{name: "within three times the radius", km: 8, want: 0.4},
		{name: "beyond", km: 20, want: 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, geographicScore(poiAtKm(tt.km), loc), 1e-9)
		})
	}

	t.Run("no constraint is neutral", func(t *testing.T) {
		assert.InDelta(t, 0.5, geographicScore(poiAtKm(500), nil), 1e-9)
	})
}

func TestFeatureScore(t *testing.T) {
	poi := &types.POIDetailedInfo{
		Name:        "Reef Grill",
		Description: "Seafood with an ocean view and a large patio for outdoor seating",
	}

	t.Run("fraction of must haves", func(t *testing.T) {
		intent := types.Intent{MustHaveFeatures: []string{"ocean view", "live entertainment"}}
		score, matched := featureScore(poi, intent)
		assert.InDelta(t, 0.5, score, 1e-9)
		assert.Equal(t, []string{"ocean view"}, matched)
	})

	t.Run("neutral without must haves", func(t *testing.T) {
		score, matched := featureScore(poi, types.Intent{})
		assert.InDelta(t, 0.5, score, 1e-9)
		assert.Empty(t, matched)
	})

	t.Run("nice to have bonus", func(t *testing.T) {
		intent := types.Intent{
			MustHaveFeatures:   []string{"ocean view"},
			NiceToHaveFeatures: []string{"outdoor seating"},
		}
		score, matched := featureScore(poi, intent)
		assert.InDelta(t, 1.0, score, 1e-9) // 1/1 plus bonus, capped
		assert.Contains(t, matched, "outdoor seating")
	})
}

func TestRecencyScore(t *testing.T) {
	scorer := NewScorer(DefaultConfig(), testLogger())
	id := uuid.New()

	t.Run("completeness flags", func(t *testing.T) {
		poi := &types.POIDetailedInfo{HasImage: true, HasWebsite: true, HasHours: true}
		assert.InDelta(t, 0.6, scorer.recencyScore(poi, nil), 1e-9)
	})

	t.Run("session recent boost", func(t *testing.T) {
		poi := &types.POIDetailedInfo{ID: id, HasImage: true}
		cc := &types.ConversationContext{RecentPOIIDs: []uuid.UUID{id}}
		assert.InDelta(t, 0.6, scorer.recencyScore(poi, cc), 1e-9)
	})

	t.Run("repeat penalty after grace", func(t *testing.T) {
		poi := &types.POIDetailedInfo{ID: id, HasImage: true, HasWebsite: true, HasHours: true}
		recent := make([]uuid.UUID, 0, types.SessionRecentWindow+4)
		for i := 0; i < types.SessionRecentWindow; i++ {
			recent = append(recent, uuid.New())
		}
		// four appearances, all outside the recent window: no boost, 2 over grace
		recent = append(recent, id, id, id, id)
		cc := &types.ConversationContext{RecentPOIIDs: recent}
		assert.InDelta(t, 0.6-0.3, scorer.recencyScore(poi, cc), 1e-9)
	})

	t.Run("never negative", func(t *testing.T) {
		poi := &types.POIDetailedInfo{ID: id}
		recent := make([]uuid.UUID, types.SessionRecentWindow, types.SessionRecentWindow+10)
		for i := range recent {
			recent[i] = uuid.New()
		}
		for i := 0; i < 10; i++ {
			recent = append(recent, id)
		}
		cc := &types.ConversationContext{RecentPOIIDs: recent}
		assert.Zero(t, scorer.recencyScore(poi, cc))
	})
}

func TestFilterCorpus(t *testing.T) {
	scorer := NewScorer(DefaultConfig(), testLogger())

	active := makePOI("Active", types.CategoryRestaurant, 19.3, -81.38, 4.5, 100)
	inactive := makePOI("Inactive", types.CategoryRestaurant, 19.3, -81.38, 4.5, 100)
	inactive.IsActive = false
	noCoords := makePOI("NullIsland", types.CategoryBeach, 0, 0, 4.5, 100)
	bar := makePOI("Late Bar", types.CategoryNightlife, 19.29, -81.37, 4.7, 200)

	pois := []types.POIDetailedInfo{active, inactive, noCoords, bar}

	t.Run("drops inactive, unplottable and sensitive", func(t *testing.T) {
		filtered := scorer.FilterCorpus(pois, &types.ConversationContext{})
		require.Len(t, filtered, 1)
		assert.Equal(t, "Active", filtered[0].Name)
	})

	t.Run("sensitive surfaces above the interest threshold", func(t *testing.T) {
		cc := &types.ConversationContext{
			CategoryInterests: map[types.Category]float64{types.CategoryNightlife: 0.7},
		}
		filtered := scorer.FilterCorpus(pois, cc)
		require.Len(t, filtered, 2)
		assert.Equal(t, "Late Bar", filtered[1].Name)
	})

	t.Run("threshold is exclusive", func(t *testing.T) {
		cc := &types.ConversationContext{
			CategoryInterests: map[types.Category]float64{types.CategoryNightlife: 0.6},
		}
		filtered := scorer.FilterCorpus(pois, cc)
		require.Len(t, filtered, 1)
	})
}

// A well-rated POI inside the requested area must outrank a top-rated POI far
// outside it under the conversational blend.
func TestScoreLocationBeatsRating(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 0.1
	scorer := NewScorer(cfg, testLogger())

	near := makePOI("Near Grill", types.CategoryRestaurant, 19.34, -81.38, 4.0, 10)
	far := makePOI("Far Palace", types.CategoryRestaurant, 19.34+20.0/111.0, -81.38, 5.0, 900)

	intent := types.Intent{
		Location: &types.LocationConstraint{Name: "seven mile beach", Center: sevenMileBeach, RadiusKm: 3},
	}

	candidates, stats := scorer.Score(context.Background(), ConversationalProfile(), intent,
		[]types.POIDetailedInfo{far, near}, nil, &types.ConversationContext{})

	require.Len(t, candidates, 2)
	assert.Equal(t, "Near Grill", candidates[0].POI.Name)
	assert.Equal(t, "Far Palace", candidates[1].POI.Name)
	assert.Equal(t, 2, stats.TotalCandidates)
	assert.Equal(t, 1, stats.GeographicMatches)
	assert.Zero(t, stats.SemanticMatches)
}

func TestScoreMinimumCutoff(t *testing.T) {
	scorer := NewScorer(DefaultConfig(), testLogger())

	far := makePOI("Far Palace", types.CategoryRestaurant, 19.34+20.0/111.0, -81.38, 5.0, 900)
	intent := types.Intent{
		Location: &types.LocationConstraint{Name: "seven mile beach", Center: sevenMileBeach, RadiusKm: 3},
	}

	t.Run("below cutoff is dropped", func(t *testing.T) {
		candidates, _ := scorer.Score(context.Background(), ConversationalProfile(), intent,
			[]types.POIDetailedInfo{far}, nil, &types.ConversationContext{})
		assert.Empty(t, candidates)
	})

	t.Run("session recent bypasses the cutoff", func(t *testing.T) {
		cc := &types.ConversationContext{RecentPOIIDs: []uuid.UUID{far.ID}}
		candidates, _ := scorer.Score(context.Background(), ConversationalProfile(), intent,
			[]types.POIDetailedInfo{far}, nil, cc)
		require.Len(t, candidates, 1)
		assert.Equal(t, far.ID, candidates[0].POI.ID)
	})

	t.Run("cutoff of zero is honored, not replaced with the default", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinScore = 0
		open := NewScorer(cfg, testLogger())
		candidates, _ := open.Score(context.Background(), ConversationalProfile(), intent,
			[]types.POIDetailedInfo{far}, nil, &types.ConversationContext{})
		require.Len(t, candidates, 1)
		assert.Equal(t, far.ID, candidates[0].POI.ID)
	})
}

func TestScoreSemanticAxis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 0.1
	scorer := NewScorer(cfg, testLogger())

	a := makePOI("Match", types.CategoryRestaurant, 19.34, -81.38, 4.5, 100)
	b := makePOI("NoMatch", types.CategoryRestaurant, 19.34, -81.38, 4.5, 100)

	intent := types.Intent{
		SearchVariants: []types.SearchVariant{
			{Query: "raw", Weight: 1.0},
			{Query: "enriched", Weight: 0.85},
		},
	}
	similarity := []map[uuid.UUID]float64{
		{a.ID: 0.4},
		{a.ID: 0.9}, // weighted 0.765, wins over the raw variant
	}

	candidates, stats := scorer.Score(context.Background(), ConversationalProfile(), intent,
		[]types.POIDetailedInfo{a, b}, similarity, &types.ConversationContext{})

	require.Len(t, candidates, 2)
	assert.Equal(t, "Match", candidates[0].POI.Name)
	assert.InDelta(t, 0.9*0.85, candidates[0].Semantic, 1e-9)
	assert.Zero(t, candidates[1].Semantic)
	assert.Equal(t, 1, stats.SemanticMatches)
}

func TestScoreDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScore = 0.1
	scorer := NewScorer(cfg, testLogger())

	pois := []types.POIDetailedInfo{
		makePOI("A", types.CategoryRestaurant, 19.30, -81.38, 4.6, 120),
		makePOI("B", types.CategoryBeach, 19.34, -81.38, 4.6, 120),
		makePOI("C", types.CategoryHotel, 19.32, -81.37, 4.6, 120),
	}
	intent := types.Intent{}
	cc := &types.ConversationContext{}

	first, _ := scorer.Score(context.Background(), ConversationalProfile(), intent, pois, nil, cc)
	second, _ := scorer.Score(context.Background(), ConversationalProfile(), intent, pois, nil, cc)
	assert.Equal(t, first, second)

	// equal totals keep corpus order
	require.Len(t, first, 3)
	assert.Equal(t, "A", first[0].POI.Name)
	assert.Equal(t, "B", first[1].POI.Name)
	assert.Equal(t, "C", first[2].POI.Name)
}

func TestWeightProfileNormalization(t *testing.T) {
	p := WeightProfile{Name: "skewed", Semantic: 2, Quality: 2}.normalized()
	assert.InDelta(t, 0.5, p.Semantic, 1e-9)
	assert.InDelta(t, 0.5, p.Quality, 1e-9)
	assert.Zero(t, p.Feature)

	t.Run("zero profile falls back to canonical", func(t *testing.T) {
		p := WeightProfile{}.normalized()
		assert.Equal(t, ProfileConversational, p.Name)
	})
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("live-refresh")
	require.NoError(t, err)
	assert.Equal(t, ProfileLiveRefresh, p.Name)

	p, err = ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, ProfileConversational, p.Name)

	_, err = ProfileByName("bogus")
	assert.Error(t, err)
}
