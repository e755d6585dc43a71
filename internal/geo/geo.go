// Package geo holds the great-circle and bounding-box math shared by the
// scoring and viewport layers.
package geo

import (
	"math"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// latitude/longitude points.
func HaversineKm(a, b types.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Centroid returns the arithmetic center of the given points. The zero point
// is returned for an empty slice.
func Centroid(points []types.GeoPoint) types.GeoPoint {
	if len(points) == 0 {
		return types.GeoPoint{}
	}
	var lat, lon float64
	for _, p := range points {
		lat += p.Latitude
		lon += p.Longitude
	}
	n := float64(len(points))
	return types.GeoPoint{Latitude: lat / n, Longitude: lon / n}
}

// Bounds returns the bounding box of the given points expanded by paddingDeg
// degrees on every side.
func Bounds(points []types.GeoPoint, paddingDeg float64) types.BoundingBox {
	if len(points) == 0 {
		return types.BoundingBox{}
	}
	box := types.BoundingBox{
		NorthEast: points[0],
		SouthWest: points[0],
	}
	for _, p := range points[1:] {
		box.NorthEast.Latitude = math.Max(box.NorthEast.Latitude, p.Latitude)
		box.NorthEast.Longitude = math.Max(box.NorthEast.Longitude, p.Longitude)
		box.SouthWest.Latitude = math.Min(box.SouthWest.Latitude, p.Latitude)
		box.SouthWest.Longitude = math.Min(box.SouthWest.Longitude, p.Longitude)
	}
	box.NorthEast.Latitude += paddingDeg
	box.NorthEast.Longitude += paddingDeg
	box.SouthWest.Latitude -= paddingDeg
	box.SouthWest.Longitude -= paddingDeg
	return box
}

// DiagonalKm returns the great-circle length of the box diagonal.
func DiagonalKm(box types.BoundingBox) float64 {
	return HaversineKm(box.SouthWest, box.NorthEast)
}
