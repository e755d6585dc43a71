// Package reasoning converts top scored candidates into ranked, justified
// recommendations plus "discover also" suggestions drawn from categories
// adjacent to the query. Justifications are deterministic: they cite the
// axes that were actually strong for that candidate.
package reasoning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const (
	strongQuality    = 0.8
	strongGeographic = 0.8
	strongSemantic   = 0.7
)

// Config bounds the reasoner's output.
type Config struct {
	// ForReasoning caps how many scored candidates are considered.
	ForReasoning int
	// FinalRecommendations caps the ranked output.
	FinalRecommendations int
	// DiscoverPerCategory caps suggestions per related category.
	DiscoverPerCategory int
	// MinDiscoverRating filters discovery picks to highly rated POIs.
	MinDiscoverRating float64
}

// DefaultConfig returns the bounds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ForReasoning:         10,
		FinalRecommendations: 5,
		DiscoverPerCategory:  2,
		MinDiscoverRating:    4.0,
	}
}

// Reasoner builds ranked recommendations. Safe for concurrent use.
type Reasoner struct {
	cfg Config
}

// NewReasoner creates a reasoner, applying defaults for zero fields.
func NewReasoner(cfg Config) *Reasoner {
	def := DefaultConfig()
	if cfg.ForReasoning <= 0 {
		cfg.ForReasoning = def.ForReasoning
	}
	if cfg.FinalRecommendations <= 0 {
		cfg.FinalRecommendations = def.FinalRecommendations
	}
	if cfg.FinalRecommendations > cfg.ForReasoning {
		cfg.FinalRecommendations = cfg.ForReasoning
	}
	if cfg.DiscoverPerCategory <= 0 {
		cfg.DiscoverPerCategory = def.DiscoverPerCategory
	}
	if cfg.MinDiscoverRating <= 0 {
		cfg.MinDiscoverRating = def.MinDiscoverRating
	}
	return &Reasoner{cfg: cfg}
}

// connectionKey indexes the canned connection-sentence table by the primary
// atmosphere or experience of the query and the related category.
type connectionKey struct {
	primary  string
	category types.Category
}

var connectionTable = map[connectionKey]string{
	{"romantic", types.CategoryNightlife}:   "Keep the evening going with a quiet cocktail spot nearby",
	{"romantic", types.CategoryBeach}:       "A sunset walk on the sand pairs well with your plans",
	{"family", types.CategoryActivity}:      "These activities keep every age in the group busy",
	{"family", types.CategoryNature}:        "Easy outdoor stops the whole family can enjoy",
	{"adventurous", types.CategoryNature}:   "More terrain to explore once you are out there",
	{"relaxing", types.CategoryWellness}:    "Extend the slow day with a spa or massage stop",
	{"luxurious", types.CategoryWellness}:   "Round out the indulgence with a premium spa visit",
	{"dining", types.CategoryNightlife}:     "Somewhere to carry the night on after dinner",
	{"beach", types.CategoryActivity}:       "Water activities launch right off this stretch of coast",
	{"nightlife", types.CategoryRestaurant}: "Line a late dinner up before you head out",
	{"wellness", types.CategoryHotel}:       "Resorts here bundle spa access with the stay",
	{"culture", types.CategoryShopping}:     "Local craft shops sit close to the heritage sites",
}

// Reason produces up to FinalRecommendations ranked items from the top
// candidates, and discovery suggestions for each related category. corpus is
// the filtered snapshot; selected marks POIs already in the selection so
// discovery never repeats them.
func (r *Reasoner) Reason(
	intent types.Intent,
	candidates []types.ScoredCandidate,
	corpus []types.POIDetailedInfo,
	selected map[uuid.UUID]bool,
) ([]types.RankedRecommendation, []types.DiscoverySuggestion) {
	pool := candidates
	if len(pool) > r.cfg.ForReasoning {
		pool = pool[:r.cfg.ForReasoning]
	}

	limit := r.cfg.FinalRecommendations
	if limit > len(pool) {
		limit = len(pool)
	}
	recommendations := make([]types.RankedRecommendation, 0, limit)
	for i := 0; i < limit; i++ {
		c := pool[i]
		recommendations = append(recommendations, types.RankedRecommendation{
			Rank:       i + 1,
			POI:        c.POI,
			Reason:     justify(c, intent),
			Highlights: highlights(c.POI),
		})
	}

	return recommendations, r.discoverAlso(intent, corpus, selected)
}

// justify builds the human-readable ranking justification from the axes that
// were strong for this candidate.
func justify(c types.ScoredCandidate, intent types.Intent) string {
	var parts []string
	if c.Quality >= strongQuality {
		parts = append(parts, fmt.Sprintf("rated %.1f by %d reviewers", c.POI.Rating, c.POI.ReviewCount))
	}
	if c.Geographic >= strongGeographic && intent.Location != nil {
		parts = append(parts, fmt.Sprintf("right in the %s area", intent.Location.Name))
	}
	if len(c.MatchedFeatures) > 0 {
		parts = append(parts, "offers "+joinNatural(c.MatchedFeatures))
	}
	if c.Semantic >= strongSemantic {
		parts = append(parts, "a strong match for what you described")
	}
	if len(parts) == 0 {
		return "A solid overall fit for your request"
	}
	sentence := strings.Join(parts, ", ")
	return strings.ToUpper(sentence[:1]) + sentence[1:]
}

func joinNatural(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// highlights are the display badges attached to a recommendation.
func highlights(p types.POIDetailedInfo) []string {
	var badges []string
	if p.Rating > 0 {
		badges = append(badges, fmt.Sprintf("★ %.1f", p.Rating))
	}
	switch {
	case p.ReviewCount >= 500:
		badges = append(badges, "500+ reviews")
	case p.ReviewCount >= 100:
		badges = append(badges, "100+ reviews")
	case p.ReviewCount >= 50:
		badges = append(badges, "50+ reviews")
	}
	if p.District != "" {
		badges = append(badges, p.District)
	}
	if p.PriceTier != "" {
		badges = append(badges, p.PriceTier)
	}
	return badges
}

// discoverAlso picks up to DiscoverPerCategory highly rated, not-yet-selected
// POIs for each related category, with a connection sentence keyed on the
// query's primary descriptor.
func (r *Reasoner) discoverAlso(
	intent types.Intent,
	corpus []types.POIDetailedInfo,
	selected map[uuid.UUID]bool,
) []types.DiscoverySuggestion {
	if len(intent.RelatedCategories) == 0 {
		return nil
	}

	byCategory := make(map[types.Category][]types.POIDetailedInfo)
	for _, p := range corpus {
		if selected[p.ID] || p.Rating < r.cfg.MinDiscoverRating {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	var suggestions []types.DiscoverySuggestion
	for _, cat := range intent.RelatedCategories {
		pois := byCategory[cat]
		if len(pois) == 0 {
			continue
		}
		sort.SliceStable(pois, func(i, j int) bool {
			if pois[i].Rating != pois[j].Rating {
				return pois[i].Rating > pois[j].Rating
			}
			if pois[i].ReviewCount != pois[j].ReviewCount {
				return pois[i].ReviewCount > pois[j].ReviewCount
			}
			return pois[i].Name < pois[j].Name
		})
		if len(pois) > r.cfg.DiscoverPerCategory {
			pois = pois[:r.cfg.DiscoverPerCategory]
		}
		suggestions = append(suggestions, types.DiscoverySuggestion{
			Category:   cat,
			POIs:       pois,
			Connection: r.connection(intent, cat),
		})
	}
	return suggestions
}

func (r *Reasoner) connection(intent types.Intent, cat types.Category) string {
	primaries := make([]string, 0, len(intent.Atmosphere)+len(intent.Experiences))
	primaries = append(primaries, intent.Atmosphere...)
	primaries = append(primaries, intent.Experiences...)
	for _, primary := range primaries {
		if sentence, ok := connectionTable[connectionKey{primary, cat}]; ok {
			return sentence
		}
	}
	return fmt.Sprintf("Complements your %s experience", intent.PrimaryIntent())
}
