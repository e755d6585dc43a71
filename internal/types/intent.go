package types

// LocationConstraint is a named place with a precomputed center and radius,
// resolved from the gazetteer.
type LocationConstraint struct {
	Name     string   `json:"name"`
	Center   GeoPoint `json:"center"`
	RadiusKm float64  `json:"radius_km"`
}

// SearchVariant is one search-query variant with its semantic lookup weight.
// Variants are ordered: the raw query first, enriched variants after, each
// carrying a fixed per-index weight decay.
type SearchVariant struct {
	Query  string  `json:"query"`
	Weight float64 `json:"weight"`
}

// Intent is the structured interpretation of a natural-language request.
// It is derived per query and discarded after the response.
type Intent struct {
	Categories            []Category          `json:"categories,omitempty"`
	Atmosphere            []string            `json:"atmosphere,omitempty"`
	Experiences           []string            `json:"experiences,omitempty"`
	Location              *LocationConstraint `json:"location,omitempty"`
	PriceTier             string              `json:"price_tier,omitempty"`
	TimeOfDay             string              `json:"time_of_day,omitempty"`
	GroupType             string              `json:"group_type,omitempty"`
	MustHaveFeatures      []string            `json:"must_have_features,omitempty"`
	NiceToHaveFeatures    []string            `json:"nice_to_have_features,omitempty"`
	SearchVariants        []SearchVariant     `json:"search_variants"`
	RelatedCategories     []Category          `json:"related_categories,omitempty"`
	Confidence            float64             `json:"confidence"`
	NaturalLanguageIntent string              `json:"natural_language_intent"`
}

// HasCategory reports whether c was detected in the query.
func (i *Intent) HasCategory(c Category) bool {
	for _, got := range i.Categories {
		if got == c {
			return true
		}
	}
	return false
}

// PrimaryIntent returns the leading descriptor of the request, used when
// phrasing discovery suggestions.
func (i *Intent) PrimaryIntent() string {
	if len(i.Atmosphere) > 0 {
		return i.Atmosphere[0]
	}
	if len(i.Experiences) > 0 {
		return i.Experiences[0]
	}
	if len(i.Categories) > 0 {
		return string(i.Categories[0])
	}
	return "travel"
}
