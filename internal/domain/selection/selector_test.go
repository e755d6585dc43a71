package selection

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

func candidate(cat types.Category, total float64) types.ScoredCandidate {
	return types.ScoredCandidate{
		POI: types.POIDetailedInfo{
			ID:       uuid.New(),
			Name:     fmt.Sprintf("%s-%0.2f", cat, total),
			Category: cat,
		},
		Total: total,
	}
}

// Eight beaches outscoring two hotels must still leave room for the hotels:
// the per-category cap stops the beaches at three.
func TestSelectDiversityCap(t *testing.T) {
	var candidates []types.ScoredCandidate
	for i := 0; i < 8; i++ {
		candidates = append(candidates, candidate(types.CategoryBeach, 0.9-float64(i)*0.01))
	}
	candidates = append(candidates,
		candidate(types.CategoryHotel, 0.6),
		candidate(types.CategoryHotel, 0.55),
	)

	result := Select(candidates, Config{MaxTotal: 10, MaxHighlighted: 5})

	perCategory := make(map[types.Category]int)
	for _, c := range result.Selected {
		perCategory[c.POI.Category]++
	}
	assert.Equal(t, 3, perCategory[types.CategoryBeach])
	assert.Equal(t, 2, perCategory[types.CategoryHotel])
	assert.Len(t, result.Selected, 5)
}

func TestSelectBounds(t *testing.T) {
	var candidates []types.ScoredCandidate
	for _, cat := range types.AllCategories() {
		for i := 0; i < 4; i++ {
			candidates = append(candidates, candidate(cat, 0.8-float64(i)*0.01))
		}
	}

	cfg := Config{MaxTotal: 10, MaxHighlighted: 5}
	result := Select(candidates, cfg)

	assert.Len(t, result.Selected, cfg.MaxTotal)
	assert.Len(t, result.Highlighted, cfg.MaxHighlighted)
	assert.Len(t, result.Clustered, cfg.MaxTotal-cfg.MaxHighlighted)

	// highlighted and clustered partition the selection in order
	for i, c := range result.Highlighted {
		assert.Equal(t, result.Selected[i].POI.ID, c.POI.ID)
	}
	for i, c := range result.Clustered {
		assert.Equal(t, result.Selected[cfg.MaxHighlighted+i].POI.ID, c.POI.ID)
	}
}

func TestSelectFewerThanHighlighted(t *testing.T) {
	candidates := []types.ScoredCandidate{
		candidate(types.CategoryRestaurant, 0.8),
		candidate(types.CategoryBeach, 0.7),
	}
	result := Select(candidates, Config{MaxTotal: 10, MaxHighlighted: 5})

	assert.Len(t, result.Selected, 2)
	assert.Len(t, result.Highlighted, 2)
	assert.Empty(t, result.Clustered)
}

func TestSelectEmpty(t *testing.T) {
	result := Select(nil, Config{})
	assert.Empty(t, result.Selected)
	assert.Empty(t, result.Highlighted)
	assert.Empty(t, result.Clustered)
}

func TestSelectDefaultCap(t *testing.T) {
	tests := []struct {
		maxTotal int
		wantCap  int
	}{
		{maxTotal: 10, wantCap: 3},
		{maxTotal: 8, wantCap: 2},
		{maxTotal: 4, wantCap: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("max %d", tt.maxTotal), func(t *testing.T) {
			cfg := Config{MaxTotal: tt.maxTotal, MaxHighlighted: 1}.withDefaults()
			assert.Equal(t, tt.wantCap, cfg.PerCategoryCap)
		})
	}
}

func TestSelectExplicitCap(t *testing.T) {
	var candidates []types.ScoredCandidate
	for i := 0; i < 6; i++ {
		candidates = append(candidates, candidate(types.CategoryRestaurant, 0.9-float64(i)*0.01))
	}
	result := Select(candidates, Config{MaxTotal: 10, MaxHighlighted: 5, PerCategoryCap: 5})
	assert.Len(t, result.Selected, 5)
}

func TestSelectPreservesOrder(t *testing.T) {
	candidates := []types.ScoredCandidate{
		candidate(types.CategoryBeach, 0.9),
		candidate(types.CategoryRestaurant, 0.8),
		candidate(types.CategoryBeach, 0.7),
		candidate(types.CategoryHotel, 0.6),
	}
	result := Select(candidates, Config{MaxTotal: 10, MaxHighlighted: 5})

	require.Len(t, result.Selected, 4)
	for i := 1; i < len(result.Selected); i++ {
		assert.GreaterOrEqual(t, result.Selected[i-1].Total, result.Selected[i].Total)
	}
}
