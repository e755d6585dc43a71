package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

var sevenMileBeach = types.GeoPoint{Latitude: 19.3373, Longitude: -81.3795}

func candidateAt(lat, lon float64) types.ScoredCandidate {
	return types.ScoredCandidate{
		POI: types.POIDetailedInfo{Latitude: lat, Longitude: lon},
	}
}

func TestComputeLocationConstraintWins(t *testing.T) {
	calc := NewCalculator(Config{})
	loc := &types.LocationConstraint{Name: "seven mile beach", Center: sevenMileBeach, RadiusKm: 3}

	// selection is ignored once the query names a place
	vp := calc.Compute([]types.ScoredCandidate{candidateAt(19.0, -81.0)}, loc)

	require.NotNil(t, vp)
	assert.Equal(t, sevenMileBeach, vp.Center)
	assert.InDelta(t, 13, vp.Zoom, 1e-9)
	assert.Nil(t, vp.Bounds)
}

func TestComputeEmptySelection(t *testing.T) {
	calc := NewCalculator(Config{})
	assert.Nil(t, calc.Compute(nil, nil))
}

func TestComputeSinglePOI(t *testing.T) {
	calc := NewCalculator(Config{})
	vp := calc.Compute([]types.ScoredCandidate{candidateAt(19.3373, -81.3795)}, nil)

	require.NotNil(t, vp)
	assert.Equal(t, sevenMileBeach, vp.Center)
	assert.InDelta(t, 16, vp.Zoom, 1e-9)
	assert.Nil(t, vp.Bounds)
}

func TestComputeMultiplePOIs(t *testing.T) {
	calc := NewCalculator(Config{})
	selected := []types.ScoredCandidate{
		candidateAt(19.3373, -81.3795),
		candidateAt(19.2866, -81.3744),
		candidateAt(19.3694, -81.2731),
	}

	vp := calc.Compute(selected, nil)

	require.NotNil(t, vp)
	require.NotNil(t, vp.Bounds)
	for _, c := range selected {
		pt := types.GeoPoint{Latitude: c.POI.Latitude, Longitude: c.POI.Longitude}
		assert.True(t, vp.Bounds.Contains(pt), "bounds must contain %v", pt)
	}

	// the centroid of the top POIs sits inside the padded bounds
	assert.True(t, vp.Bounds.Contains(vp.Center))
	assert.GreaterOrEqual(t, vp.Zoom, float64(9))
	assert.LessOrEqual(t, vp.Zoom, float64(15))
}

func TestComputeCentroidTopN(t *testing.T) {
	calc := NewCalculator(Config{CentroidTopN: 2})
	selected := []types.ScoredCandidate{
		candidateAt(19.30, -81.38),
		candidateAt(19.32, -81.38),
		// an outlier beyond the top N must not drag the center
		candidateAt(19.90, -81.38),
	}

	vp := calc.Compute(selected, nil)
	require.NotNil(t, vp)
	assert.InDelta(t, 19.31, vp.Center.Latitude, 1e-9)
}

func TestZoomForRadiusMonotonic(t *testing.T) {
	radii := []float64{0.5, 1, 2, 5, 10, 25, 100}
	prev := zoomForRadius(radii[0])
	for _, r := range radii[1:] {
		z := zoomForRadius(r)
		assert.LessOrEqual(t, z, prev, "zoom must not increase with radius %f", r)
		prev = z
	}
	assert.InDelta(t, 15, zoomForRadius(1), 1e-9)
	assert.InDelta(t, 10, zoomForRadius(100), 1e-9)
}

func TestZoomForSpreadMonotonic(t *testing.T) {
	spreads := []float64{0.5, 1, 3, 8, 20, 50, 200}
	prev := zoomForSpread(spreads[0])
	for _, s := range spreads[1:] {
		z := zoomForSpread(s)
		assert.LessOrEqual(t, z, prev, "zoom must not increase with spread %f", s)
		prev = z
	}
	assert.InDelta(t, 15, zoomForSpread(1), 1e-9)
	assert.InDelta(t, 9, zoomForSpread(200), 1e-9)
}
