// Package session owns the per-session ConversationContext. The engine only
// ever reads snapshots; the Record methods exist for the calling layer to
// update state between turns.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

const (
	sessionTTL       = 24 * time.Hour
	cleanupInterval  = time.Hour
	maxRecentHistory = 50
)

// Store keeps conversation contexts in memory, keyed by session id. The
// cache only guards its own bucket map, so mu serializes access to the
// stored contexts themselves.
type Store struct {
	mu     sync.Mutex
	cache  *cache.Cache
	logger *slog.Logger
}

// NewStore creates an in-memory session store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		cache:  cache.New(sessionTTL, cleanupInterval),
		logger: logger,
	}
}

// Snapshot returns a deep copy of the session's context, or an empty context
// for an unknown session. The engine can read the snapshot freely without
// racing turn-to-turn mutation.
func (s *Store) Snapshot(sessionID uuid.UUID) *types.ConversationContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cc, ok := s.cache.Get(sessionID.String()); ok {
		return cc.(*types.ConversationContext).Clone()
	}
	return &types.ConversationContext{}
}

func (s *Store) mutate(sessionID uuid.UUID, fn func(cc *types.ConversationContext)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cc *types.ConversationContext
	if existing, ok := s.cache.Get(sessionID.String()); ok {
		cc = existing.(*types.ConversationContext)
	} else {
		cc = &types.ConversationContext{}
	}
	fn(cc)
	s.cache.SetDefault(sessionID.String(), cc)
}

// RecordShownPOIs prepends ids to the session's recent list, most recent
// first, trimming old history.
func (s *Store) RecordShownPOIs(sessionID uuid.UUID, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	s.mutate(sessionID, func(cc *types.ConversationContext) {
		cc.RecentPOIIDs = append(append([]uuid.UUID(nil), ids...), cc.RecentPOIIDs...)
		if len(cc.RecentPOIIDs) > maxRecentHistory {
			cc.RecentPOIIDs = cc.RecentPOIIDs[:maxRecentHistory]
		}
	})
}

// RecordInterest bumps the running interest score for a category, clamped to
// [0,1].
func (s *Store) RecordInterest(sessionID uuid.UUID, cat types.Category, delta float64) {
	s.mutate(sessionID, func(cc *types.ConversationContext) {
		if cc.CategoryInterests == nil {
			cc.CategoryInterests = make(map[types.Category]float64)
		}
		score := cc.CategoryInterests[cat] + delta
		if score > 1 {
			score = 1
		}
		if score < 0 {
			score = 0
		}
		cc.CategoryInterests[cat] = score
	})
}

// SetGeoFocus records where the session's map currently looks.
func (s *Store) SetGeoFocus(sessionID uuid.UUID, focus types.GeoPoint) {
	s.mutate(sessionID, func(cc *types.ConversationContext) {
		cc.GeoFocus = &focus
	})
}

// SetQueryEmbedding stores the latest query embedding for the session.
func (s *Store) SetQueryEmbedding(sessionID uuid.UUID, embedding []float32) {
	s.mutate(sessionID, func(cc *types.ConversationContext) {
		cc.QueryEmbedding = append([]float32(nil), embedding...)
	})
}
