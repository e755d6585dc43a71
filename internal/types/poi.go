package types

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Category is the fixed set of POI categories in the knowledge corpus.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryBeach      Category = "beach"
	CategoryHotel      Category = "hotel"
	CategoryAttraction Category = "attraction"
	CategoryActivity   Category = "activity"
	CategoryNightlife  Category = "nightlife"
	CategoryShopping   Category = "shopping"
	CategoryWellness   Category = "wellness"
	CategoryCulture    Category = "culture"
	CategoryNature     Category = "nature"
)

// AllCategories returns the fixed category set in canonical order.
func AllCategories() []Category {
	return []Category{
		CategoryRestaurant, CategoryBeach, CategoryHotel, CategoryAttraction,
		CategoryActivity, CategoryNightlife, CategoryShopping, CategoryWellness,
		CategoryCulture, CategoryNature,
	}
}

// IsValid reports whether c belongs to the fixed category set.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// POIDetailedInfo is a read-only snapshot of a place record in the knowledge
// corpus. Records are owned by the upstream ingestion pipeline; the engine
// never mutates them.
type POIDetailedInfo struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         Category  `json:"category"`
	Subcategory      string    `json:"subcategory,omitempty"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"short_description,omitempty"`
	Highlights       []string  `json:"highlights,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Island           string    `json:"island,omitempty"`
	District         string    `json:"district,omitempty"`
	Area             string    `json:"area,omitempty"`
	PriceTier        string    `json:"price_tier,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Rating           float64   `json:"rating"`
	ReviewCount      int       `json:"review_count"`
	HasImage         bool      `json:"has_image"`
	HasWebsite       bool      `json:"has_website"`
	HasHours         bool      `json:"has_hours"`
	IsActive         bool      `json:"is_active"`
}

// HasValidCoordinates reports whether the POI carries finite, plottable
// coordinates. A (0,0) pair is treated as missing data from the upstream
// pipeline, not a real location.
func (p *POIDetailedInfo) HasValidCoordinates() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return false
	}
	if p.Latitude == 0 && p.Longitude == 0 {
		return false
	}
	return true
}

// SearchText returns the lower-cased concatenation of the POI's text fields,
// used for feature and atmosphere term matching.
func (p *POIDetailedInfo) SearchText() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteByte(' ')
	b.WriteString(p.Subcategory)
	b.WriteByte(' ')
	b.WriteString(p.Description)
	b.WriteByte(' ')
	b.WriteString(p.ShortDescription)
	for _, h := range p.Highlights {
		b.WriteByte(' ')
		b.WriteString(h)
	}
	for _, t := range p.Tags {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return strings.ToLower(b.String())
}

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	NorthEast GeoPoint `json:"north_east"`
	SouthWest GeoPoint `json:"south_west"`
}

// Contains reports whether pt lies inside the box (inclusive).
func (b BoundingBox) Contains(pt GeoPoint) bool {
	return pt.Latitude <= b.NorthEast.Latitude && pt.Latitude >= b.SouthWest.Latitude &&
		pt.Longitude <= b.NorthEast.Longitude && pt.Longitude >= b.SouthWest.Longitude
}

// Viewport describes the map area the caller should display.
type Viewport struct {
	Center GeoPoint     `json:"center"`
	Zoom   float64      `json:"zoom"`
	Bounds *BoundingBox `json:"bounds,omitempty"`
}
