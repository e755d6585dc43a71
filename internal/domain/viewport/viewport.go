// Package viewport derives the map center, zoom and bounds to show for a
// selection or an explicit location constraint.
package viewport

import (
	"github.com/FACorreiaa/loci-recommend-engine/internal/geo"
	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

// Config tunes the viewport geometry.
type Config struct {
	// PaddingDeg is added around computed bounds on every side.
	PaddingDeg float64
	// SinglePOIZoom is the fixed tight zoom for a single selected POI.
	SinglePOIZoom float64
	// CentroidTopN bounds how many top-scored POIs feed the centroid.
	CentroidTopN int
}

// DefaultConfig returns the geometry used when nothing is configured.
func DefaultConfig() Config {
	return Config{PaddingDeg: 0.01, SinglePOIZoom: 16, CentroidTopN: 5}
}

// radiusZoomSteps maps a constraint radius (km) to zoom; smaller radius
// means higher zoom. Rows must stay sorted ascending by radius.
var radiusZoomSteps = []struct {
	maxRadiusKm float64
	zoom        float64
}{
	{1, 15},
	{2, 14},
	{5, 13},
	{10, 12},
	{25, 11},
}

const radiusZoomFloor = 10

// spreadZoomSteps maps the bounding-box diagonal (km) of a selection to
// zoom; larger spread means lower zoom.
var spreadZoomSteps = []struct {
	maxDiagonalKm float64
	zoom          float64
}{
	{1, 15},
	{3, 14},
	{8, 13},
	{20, 12},
	{50, 11},
}

const spreadZoomFloor = 9

// Calculator computes viewports. Safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator, applying defaults for zero fields.
func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.PaddingDeg <= 0 {
		cfg.PaddingDeg = def.PaddingDeg
	}
	if cfg.SinglePOIZoom <= 0 {
		cfg.SinglePOIZoom = def.SinglePOIZoom
	}
	if cfg.CentroidTopN <= 0 {
		cfg.CentroidTopN = def.CentroidTopN
	}
	return &Calculator{cfg: cfg}
}

// Compute derives the viewport. An explicit location constraint wins: center
// there with zoom from the radius table. Otherwise center on the centroid of
// the top selected POIs, picking zoom from the selection's spread, and emit
// padded bounds when more than one POI is selected. With no selection and no
// constraint the caller keeps its current view (nil viewport).
func (c *Calculator) Compute(selected []types.ScoredCandidate, loc *types.LocationConstraint) *types.Viewport {
	if loc != nil {
		return &types.Viewport{
			Center: loc.Center,
			Zoom:   zoomForRadius(loc.RadiusKm),
		}
	}
	if len(selected) == 0 {
		return nil
	}
	if len(selected) == 1 {
		p := selected[0].POI
		return &types.Viewport{
			Center: types.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude},
			Zoom:   c.cfg.SinglePOIZoom,
		}
	}

	topN := c.cfg.CentroidTopN
	if topN > len(selected) {
		topN = len(selected)
	}
	topPoints := make([]types.GeoPoint, 0, topN)
	for _, cand := range selected[:topN] {
		topPoints = append(topPoints, types.GeoPoint{
			Latitude:  cand.POI.Latitude,
			Longitude: cand.POI.Longitude,
		})
	}

	allPoints := make([]types.GeoPoint, 0, len(selected))
	for _, cand := range selected {
		allPoints = append(allPoints, types.GeoPoint{
			Latitude:  cand.POI.Latitude,
			Longitude: cand.POI.Longitude,
		})
	}
	bounds := geo.Bounds(allPoints, c.cfg.PaddingDeg)

	return &types.Viewport{
		Center: geo.Centroid(topPoints),
		Zoom:   zoomForSpread(geo.DiagonalKm(bounds)),
		Bounds: &bounds,
	}
}

func zoomForRadius(radiusKm float64) float64 {
	for _, step := range radiusZoomSteps {
		if radiusKm <= step.maxRadiusKm {
			return step.zoom
		}
	}
	return radiusZoomFloor
}

func zoomForSpread(diagonalKm float64) float64 {
	for _, step := range spreadZoomSteps {
		if diagonalKm <= step.maxDiagonalKm {
			return step.zoom
		}
	}
	return spreadZoomFloor
}
