package types

import "github.com/google/uuid"

// ScoredCandidate is a POI with its per-axis scores. All axes and the total
// lie in [0,1]. Candidates are ephemeral and discarded after the response.
type ScoredCandidate struct {
	POI             POIDetailedInfo `json:"poi"`
	Semantic        float64         `json:"semantic"`
	Quality         float64         `json:"quality"`
	Feature         float64         `json:"feature"`
	Geographic      float64         `json:"geographic"`
	Diversity       float64         `json:"diversity"`
	Recency         float64         `json:"recency"`
	Total           float64         `json:"total"`
	MatchedFeatures []string        `json:"matched_features,omitempty"`
}

// SelectionStats summarizes how the candidate pool responded to each signal.
type SelectionStats struct {
	TotalCandidates   int `json:"total_candidates"`
	SemanticMatches   int `json:"semantic_matches"`
	InterestMatches   int `json:"interest_matches"`
	GeographicMatches int `json:"geographic_matches"`
}

// RankedRecommendation is one justified, 1-based ranked pick.
type RankedRecommendation struct {
	Rank       int             `json:"rank"`
	POI        POIDetailedInfo `json:"poi"`
	Reason     string          `json:"reason"`
	Highlights []string        `json:"highlights,omitempty"`
}

// DiscoverySuggestion carries up to two highly rated POIs from a category
// adjacent to the query, with a sentence connecting it back to the request.
type DiscoverySuggestion struct {
	Category   Category          `json:"category"`
	POIs       []POIDetailedInfo `json:"pois"`
	Connection string            `json:"connection"`
}

// SelectionResult is the engine's output contract: the ordered marker list,
// which markers to highlight versus cluster, the viewport to show, and the
// reasoned recommendations when reasoning was invoked.
type SelectionResult struct {
	Markers            []ScoredCandidate      `json:"markers"`
	HighlightedIDs     []uuid.UUID            `json:"highlighted_ids"`
	ClusteredIDs       []uuid.UUID            `json:"clustered_ids"`
	Viewport           *Viewport              `json:"viewport,omitempty"`
	Stats              SelectionStats         `json:"stats"`
	TopRecommendations []RankedRecommendation `json:"top_recommendations,omitempty"`
	DiscoverAlso       []DiscoverySuggestion  `json:"discover_also,omitempty"`
}

// RecommendRequest is a conversational turn: free-text query plus prior turns.
type RecommendRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Query     string    `json:"query"`
	History   []string  `json:"history,omitempty"`
}

// RefreshRequest asks for a live marker refresh around the current map focus.
type RefreshRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Query     string    `json:"query"`
	Focus     *GeoPoint `json:"focus,omitempty"`
}
