package types

import "github.com/google/uuid"

// SessionRecentWindow is how many of the most recent place ids count as
// "session recent" for the minimum-score bypass.
const SessionRecentWindow = 10

// ConversationContext is a per-session snapshot supplied by the session
// collaborator. The engine reads it during scoring and never writes it;
// mutation between turns belongs to the calling layer.
type ConversationContext struct {
	CategoryInterests  map[Category]float64 `json:"category_interests,omitempty"`
	RecentPOIIDs       []uuid.UUID          `json:"recent_poi_ids,omitempty"` // most recent first
	GeoFocus           *GeoPoint            `json:"geo_focus,omitempty"`
	PredictedInterests []Category           `json:"predicted_interests,omitempty"`
	QueryEmbedding     []float32            `json:"-"`
}

// IsSessionRecent reports whether id is among the first SessionRecentWindow
// entries of the recent place list.
func (c *ConversationContext) IsSessionRecent(id uuid.UUID) bool {
	if c == nil {
		return false
	}
	window := c.RecentPOIIDs
	if len(window) > SessionRecentWindow {
		window = window[:SessionRecentWindow]
	}
	for _, got := range window {
		if got == id {
			return true
		}
	}
	return false
}

// ShownCount returns how many times id appears in the recent place list,
// i.e. how often the POI has already been surfaced this session.
func (c *ConversationContext) ShownCount(id uuid.UUID) int {
	if c == nil {
		return 0
	}
	count := 0
	for _, got := range c.RecentPOIIDs {
		if got == id {
			count++
		}
	}
	return count
}

// InterestFor returns the running interest score for a category, 0 if unknown.
func (c *ConversationContext) InterestFor(cat Category) float64 {
	if c == nil || c.CategoryInterests == nil {
		return 0
	}
	return c.CategoryInterests[cat]
}

// Clone returns a deep copy so callers can hand the engine a snapshot without
// sharing mutable state across turns.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := &ConversationContext{}
	if c.CategoryInterests != nil {
		out.CategoryInterests = make(map[Category]float64, len(c.CategoryInterests))
		for k, v := range c.CategoryInterests {
			out.CategoryInterests[k] = v
		}
	}
	out.RecentPOIIDs = append([]uuid.UUID(nil), c.RecentPOIIDs...)
	if c.GeoFocus != nil {
		focus := *c.GeoFocus
		out.GeoFocus = &focus
	}
	out.PredictedInterests = append([]Category(nil), c.PredictedInterests...)
	out.QueryEmbedding = append([]float32(nil), c.QueryEmbedding...)
	return out
}
