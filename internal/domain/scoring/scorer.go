// Package scoring computes the normalized multi-axis score for every POI in
// the corpus snapshot given an Intent, optional semantic similarity maps and
// the session's conversation context. One scorer serves every caller; the
// axis blend comes from a named WeightProfile.
package scoring

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/loci-recommend-engine/internal/geo"
	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const (
	neutralScore = 0.5

	// quality step table
	qualityExceptional = 1.0
	qualityExcellent   = 0.85
	qualityGood        = 0.7
	qualityFair        = 0.5
	qualityBaseline    = 0.3
	reviewBonus        = 0.05

	// geographic distance bands, as multiples of the constraint radius
	geoInRadius   = 1.0
	geoNearRadius = 0.7
	geoFarRadius  = 0.4
	geoBeyond     = 0.1

	featureBonus       = 0.05
	completenessReward = 0.2
	sessionRecentBoost = 0.4
	shownPenaltyStep   = 0.15
)

// Config carries the scoring thresholds that operators tune per deployment.
type Config struct {
	// MinScore drops candidates below this total unless they are session
	// recent.
	MinScore float64
	// SensitiveCategories are hidden unless the session has shown explicit
	// interest in that exact category.
	SensitiveCategories []types.Category
	// InterestThreshold is the session interest score a sensitive category
	// must exceed to become visible.
	InterestThreshold float64
	// ShownPenaltyAfter is how many prior appearances a POI gets for free
	// before the graduated repeat penalty kicks in.
	ShownPenaltyAfter int
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MinScore:            0.4,
		SensitiveCategories: []types.Category{types.CategoryNightlife},
		InterestThreshold:   0.6,
		ShownPenaltyAfter:   2,
	}
}

// Scorer scores corpus snapshots. It holds no per-request state and is safe
// for concurrent use.
type Scorer struct {
	cfg    Config
	logger *slog.Logger
}

// NewScorer creates a scorer with the given thresholds. Zero is a valid
// value for MinScore and InterestThreshold; callers wanting defaults start
// from DefaultConfig.
func NewScorer(cfg Config, logger *slog.Logger) *Scorer {
	if cfg.ShownPenaltyAfter == 0 {
		cfg.ShownPenaltyAfter = DefaultConfig().ShownPenaltyAfter
	}
	return &Scorer{cfg: cfg, logger: logger}
}

// FilterCorpus removes POIs that must never be scored: inactive records,
// records without plottable coordinates, and sensitive categories the
// session has not shown interest in. These are filters, not errors.
func (s *Scorer) FilterCorpus(pois []types.POIDetailedInfo, cc *types.ConversationContext) []types.POIDetailedInfo {
	sensitive := make(map[types.Category]bool, len(s.cfg.SensitiveCategories))
	for _, c := range s.cfg.SensitiveCategories {
		sensitive[c] = true
	}

	filtered := make([]types.POIDetailedInfo, 0, len(pois))
	for _, p := range pois {
		if !p.IsActive || !p.HasValidCoordinates() {
			continue
		}
		if sensitive[p.Category] && cc.InterestFor(p.Category) <= s.cfg.InterestThreshold {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Score computes every axis for every POI, drops candidates below the
// minimum total (session-recent POIs bypass the cutoff), and returns the
// survivors sorted descending by total with stable input-order ties.
//
// similarity holds one {poiID -> similarity} map per search variant, in
// variant order; nil or missing maps force the semantic axis to 0 (the
// degraded, embedding-off mode).
func (s *Scorer) Score(
	ctx context.Context,
	profile WeightProfile,
	intent types.Intent,
	pois []types.POIDetailedInfo,
	similarity []map[uuid.UUID]float64,
	cc *types.ConversationContext,
) ([]types.ScoredCandidate, types.SelectionStats) {
	weights := profile.normalized()
	stats := types.SelectionStats{TotalCandidates: len(pois)}

	candidates := make([]types.ScoredCandidate, 0, len(pois))
	for _, p := range pois {
		c := types.ScoredCandidate{POI: p}

		c.Semantic = s.semanticScore(p.ID, intent.SearchVariants, similarity)
		c.Quality = qualityScore(p.Rating, p.ReviewCount)
		c.Feature, c.MatchedFeatures = featureScore(&p, intent)
		c.Geographic = geographicScore(&p, intent.Location)
		// Diversity is resolved by the selector's per-category caps; the axis
		// stays neutral here so it cannot reorder candidates.
		c.Diversity = neutralScore
		c.Recency = s.recencyScore(&p, cc)

		c.Total = weights.Semantic*c.Semantic +
			weights.Quality*c.Quality +
			weights.Feature*c.Feature +
			weights.Geographic*c.Geographic +
			weights.Diversity*c.Diversity +
			weights.Recency*c.Recency

		if c.Semantic > 0 {
			stats.SemanticMatches++
		}
		if cc.InterestFor(p.Category) > 0 {
			stats.InterestMatches++
		}
		if intent.Location != nil && c.Geographic >= geoInRadius {
			stats.GeographicMatches++
		}

		if c.Total < s.cfg.MinScore && !cc.IsSessionRecent(p.ID) {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Total > candidates[j].Total
	})

	if s.logger != nil {
		s.logger.DebugContext(ctx, "scored corpus snapshot",
			slog.String("profile", profile.Name),
			slog.Int("candidates", len(pois)),
			slog.Int("survivors", len(candidates)),
			slog.Int("semantic_matches", stats.SemanticMatches))
	}
	return candidates, stats
}

// semanticScore is the max over variants of similarity times the variant's
// decay weight. With no embedding collaborator it is 0 everywhere.
func (s *Scorer) semanticScore(id uuid.UUID, variants []types.SearchVariant, similarity []map[uuid.UUID]float64) float64 {
	best := 0.0
	for i, variantSims := range similarity {
		if variantSims == nil || i >= len(variants) {
			continue
		}
		if sim, ok := variantSims[id]; ok {
			weighted := sim * variants[i].Weight
			if weighted > best {
				best = weighted
			}
		}
	}
	if best > 1 {
		best = 1
	}
	return best
}

func qualityScore(rating float64, reviewCount int) float64 {
	var score float64
	switch {
	case rating >= 4.8:
		score = qualityExceptional
	case rating >= 4.5:
		score = qualityExcellent
	case rating >= 4.0:
		score = qualityGood
	case rating >= 3.5:
		score = qualityFair
	default:
		score = qualityBaseline
	}
	// review bonuses stack
	if reviewCount >= 50 {
		score += reviewBonus
	}
	if reviewCount >= 100 {
		score += reviewBonus
	}
	if reviewCount >= 500 {
		score += reviewBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

// featureScore is the fraction of must-have features whose full term set
// appears in the POI's text, with small bonuses for nice-to-have and
// atmosphere term hits. Neutral when the intent names no must-haves.
func featureScore(p *types.POIDetailedInfo, intent types.Intent) (float64, []string) {
	text := p.SearchText()

	var matched []string
	var score float64
	if len(intent.MustHaveFeatures) == 0 {
		score = neutralScore
	} else {
		hits := 0
		for _, feature := range intent.MustHaveFeatures {
			if containsAllTerms(text, feature) {
				hits++
				matched = append(matched, feature)
			}
		}
		score = float64(hits) / float64(len(intent.MustHaveFeatures))
	}

	for _, feature := range intent.NiceToHaveFeatures {
		if containsAllTerms(text, feature) {
			score += featureBonus
			matched = append(matched, feature)
		}
	}
	for _, tag := range intent.Atmosphere {
		if strings.Contains(text, tag) {
			score += featureBonus
		}
	}
	if score > 1 {
		score = 1
	}
	return score, matched
}

func containsAllTerms(text, feature string) bool {
	for _, term := range strings.Fields(strings.ToLower(feature)) {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// geographicScore applies the banded distance falloff around the location
// constraint. Distance never hard-excludes a candidate.
func geographicScore(p *types.POIDetailedInfo, loc *types.LocationConstraint) float64 {
	if loc == nil || loc.RadiusKm <= 0 {
		return neutralScore
	}
	dist := geo.HaversineKm(types.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}, loc.Center)
	switch {
	case dist <= loc.RadiusKm:
		return geoInRadius
	case dist <= 2*loc.RadiusKm:
		return geoNearRadius
	case dist <= 3*loc.RadiusKm:
		return geoFarRadius
	default:
		return geoBeyond
	}
}

// recencyScore rewards content completeness, boosts POIs the session just
// talked about, and penalizes POIs already shown repeatedly.
func (s *Scorer) recencyScore(p *types.POIDetailedInfo, cc *types.ConversationContext) float64 {
	var score float64
	if p.HasImage {
		score += completenessReward
	}
	if p.HasWebsite {
		score += completenessReward
	}
	if p.HasHours {
		score += completenessReward
	}
	if cc != nil {
		if cc.IsSessionRecent(p.ID) {
			score += sessionRecentBoost
		}
		if shown := cc.ShownCount(p.ID); shown > s.cfg.ShownPenaltyAfter {
			score -= shownPenaltyStep * float64(shown-s.cfg.ShownPenaltyAfter)
		}
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
