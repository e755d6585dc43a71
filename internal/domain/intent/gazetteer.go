package intent

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

// PlaceIndex resolves named places mentioned in a query to a location
// constraint. It is built once from gazetteer entries and immutable after
// construction; callers that reload the gazetteer build a fresh index.
type PlaceIndex struct {
	entries []indexedPlace
}

type indexedPlace struct {
	phrase     string
	constraint types.LocationConstraint
}

// NewPlaceIndex builds the lookup index from gazetteer entries. Names and
// aliases are matched as lower-cased substrings, longest phrase first, so
// "seven mile beach" wins over "seven mile".
func NewPlaceIndex(entries []PlaceEntry) *PlaceIndex {
	idx := &PlaceIndex{}
	for _, e := range entries {
		constraint := types.LocationConstraint{
			Name: strings.ToLower(e.Name),
			Center: types.GeoPoint{
				Latitude:  e.Latitude,
				Longitude: e.Longitude,
			},
			RadiusKm: e.RadiusKm,
		}
		idx.entries = append(idx.entries, indexedPlace{
			phrase:     strings.ToLower(e.Name),
			constraint: constraint,
		})
		for _, alias := range e.Aliases {
			idx.entries = append(idx.entries, indexedPlace{
				phrase:     strings.ToLower(alias),
				constraint: constraint,
			})
		}
	}
	sort.SliceStable(idx.entries, func(i, j int) bool {
		return len(idx.entries[i].phrase) > len(idx.entries[j].phrase)
	})
	return idx
}

// Lookup returns the constraint for the first (longest) place phrase found in
// the lower-cased query, or nil when no place is mentioned.
func (idx *PlaceIndex) Lookup(loweredQuery string) *types.LocationConstraint {
	for _, e := range idx.entries {
		if strings.Contains(loweredQuery, e.phrase) {
			constraint := e.constraint
			return &constraint
		}
	}
	return nil
}

// Len returns the number of indexed phrases.
func (idx *PlaceIndex) Len() int {
	return len(idx.entries)
}
