// Package recommend orchestrates the recommendation pipeline: intent
// extraction, semantic lookup, scoring, diversity selection, viewport
// geometry and reasoning.
package recommend

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/loci-recommend-engine/internal/corpus"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/intent"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/reasoning"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/scoring"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/selection"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/viewport"
	"github.com/FACorreiaa/loci-recommend-engine/internal/embedding"
	"github.com/FACorreiaa/loci-recommend-engine/internal/session"
	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
	"github.com/FACorreiaa/loci-recommend-engine/pkg/observability"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the engine's contract: one call per conversational turn, one
// for live marker refreshes.
type Service interface {
	Recommend(ctx context.Context, req types.RecommendRequest) (*types.SelectionResult, error)
	RefreshMarkers(ctx context.Context, req types.RefreshRequest) (*types.SelectionResult, error)
}

// Config gathers the pipeline's tunables.
type Config struct {
	// ConversationProfile is the canonical scoring blend for chat turns.
	ConversationProfile scoring.WeightProfile
	// RefreshProfile is the alternate blend for live marker refreshes.
	RefreshProfile scoring.WeightProfile
	Selection      selection.Config
	Reasoning      reasoning.Config
	// EmbeddingTopK bounds similarity results per variant.
	EmbeddingTopK int
	// EmbeddingTimeout bounds the embedding and similarity lookups per
	// request.
	EmbeddingTimeout time.Duration
	// RefreshRadiusKm is the synthetic constraint radius around the map
	// focus for refreshes without an explicit location.
	RefreshRadiusKm float64
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		ConversationProfile: scoring.ConversationalProfile(),
		RefreshProfile:      scoring.LiveRefreshProfile(),
		Selection:           selection.DefaultConfig(),
		Reasoning:           reasoning.DefaultConfig(),
		EmbeddingTopK:       50,
		EmbeddingTimeout:    3 * time.Second,
		RefreshRadiusKm:     5,
	}
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger     *slog.Logger
	extractor  *intent.Extractor
	scorer     *scoring.Scorer
	viewports  *viewport.Calculator
	reasoner   *reasoning.Reasoner
	corpusRepo corpus.Repository
	sessions   *session.Store
	embedder   embedding.Client // nil runs the engine in semantic-off mode
	cache      *cache.Cache
	metrics    *observability.Metrics
	cfg        Config
}

// NewService wires the pipeline. embedder may be nil; the engine then scores
// without the semantic axis.
func NewService(
	extractor *intent.Extractor,
	scorer *scoring.Scorer,
	corpusRepo corpus.Repository,
	sessions *session.Store,
	embedder embedding.Client,
	metrics *observability.Metrics,
	cfg Config,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		extractor:  extractor,
		scorer:     scorer,
		viewports:  viewport.NewCalculator(viewport.DefaultConfig()),
		reasoner:   reasoning.NewReasoner(cfg.Reasoning),
		corpusRepo: corpusRepo,
		sessions:   sessions,
		embedder:   embedder,
		cache:      cache.New(15*time.Minute, 30*time.Minute),
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Recommend handles one conversational turn end to end.
func (s *ServiceImpl) Recommend(ctx context.Context, req types.RecommendRequest) (*types.SelectionResult, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("session.id", req.SessionID.String()),
		attribute.Int("history.turns", len(req.History)),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "Recommend"),
		slog.String("session_id", req.SessionID.String()))

	queryIntent := s.extractor.Extract(req.Query, req.History)
	span.SetAttributes(
		attribute.Int("intent.categories", len(queryIntent.Categories)),
		attribute.Float64("intent.confidence", queryIntent.Confidence),
	)

	result, err := s.run(ctx, l, queryIntent, req.SessionID, s.cfg.ConversationProfile, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommendation pipeline failed")
		s.observe("recommend", "error", start, 0)
		return nil, err
	}

	s.observe("recommend", "ok", start, result.Stats.TotalCandidates)
	l.InfoContext(ctx, "recommendation turn complete",
		slog.Int("markers", len(result.Markers)),
		slog.Int("recommendations", len(result.TopRecommendations)),
		slog.Float64("confidence", queryIntent.Confidence))
	return result, nil
}

// RefreshMarkers rescores the corpus for the current map view under the
// refresh weight profile; no reasoning is attached.
func (s *ServiceImpl) RefreshMarkers(ctx context.Context, req types.RefreshRequest) (*types.SelectionResult, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "RefreshMarkers", trace.WithAttributes(
		attribute.String("session.id", req.SessionID.String()),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "RefreshMarkers"),
		slog.String("session_id", req.SessionID.String()))

	queryIntent := s.extractor.Extract(req.Query, nil)

	// A refresh without an explicit place anchors on the current map focus;
	// the session's stored focus is the fallback.
	if queryIntent.Location == nil {
		focus := req.Focus
		if focus == nil {
			if cc := s.sessions.Snapshot(req.SessionID); cc.GeoFocus != nil {
				focus = cc.GeoFocus
			}
		}
		if focus != nil {
			queryIntent.Location = &types.LocationConstraint{
				Name:     "current view",
				Center:   *focus,
				RadiusKm: s.cfg.RefreshRadiusKm,
			}
		}
	}

	result, err := s.run(ctx, l, queryIntent, req.SessionID, s.cfg.RefreshProfile, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marker refresh failed")
		s.observe("refresh", "error", start, 0)
		return nil, err
	}

	s.observe("refresh", "ok", start, result.Stats.TotalCandidates)
	l.DebugContext(ctx, "marker refresh complete", slog.Int("markers", len(result.Markers)))
	return result, nil
}

// run executes the shared scoring/selection pipeline.
func (s *ServiceImpl) run(
	ctx context.Context,
	l *slog.Logger,
	queryIntent types.Intent,
	sessionID uuid.UUID,
	profile scoring.WeightProfile,
	withReasoning bool,
) (*types.SelectionResult, error) {
	cc := s.sessions.Snapshot(sessionID)

	pois, err := s.corpusRepo.GetActivePOIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus snapshot: %w", err)
	}
	filtered := s.scorer.FilterCorpus(pois, cc)

	similarity := s.semanticScores(ctx, l, queryIntent)

	candidates, stats := s.scorer.Score(ctx, profile, queryIntent, filtered, similarity, cc)
	sel := selection.Select(candidates, s.cfg.Selection)

	result := &types.SelectionResult{
		Markers:        sel.Selected,
		HighlightedIDs: candidateIDs(sel.Highlighted),
		ClusteredIDs:   candidateIDs(sel.Clustered),
		Viewport:       s.viewports.Compute(sel.Selected, queryIntent.Location),
		Stats:          stats,
	}

	if withReasoning {
		selectedSet := make(map[uuid.UUID]bool, len(sel.Selected))
		for _, c := range sel.Selected {
			selectedSet[c.POI.ID] = true
		}
		result.TopRecommendations, result.DiscoverAlso = s.reasoner.Reason(queryIntent, sel.Selected, filtered, selectedSet)
	}
	return result, nil
}

// semanticScores asks the embedding collaborator for similarity maps, one
// per search variant. Any failure degrades to semantic-off scoring; it never
// fails the request.
func (s *ServiceImpl) semanticScores(ctx context.Context, l *slog.Logger, queryIntent types.Intent) []map[uuid.UUID]float64 {
	if s.embedder == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbeddingTimeout)
	defer cancel()

	similarity := make([]map[uuid.UUID]float64, len(queryIntent.SearchVariants))
	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range queryIntent.SearchVariants {
		g.Go(func() error {
			key := semanticCacheKey(variant.Query)
			if cached, ok := s.cache.Get(key); ok {
				similarity[i] = cached.(map[uuid.UUID]float64)
				return nil
			}
			vector, err := s.embedder.EmbedQuery(gctx, variant.Query)
			if err != nil {
				return fmt.Errorf("variant %d: %w", i, err)
			}
			matches, err := s.corpusRepo.SimilarPOIs(gctx, vector, s.cfg.EmbeddingTopK)
			if err != nil {
				return fmt.Errorf("variant %d: %w", i, err)
			}
			s.cache.SetDefault(key, matches)
			similarity[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.WarnContext(ctx, "embedding collaborator unavailable, scoring without semantic signal",
			slog.Any("error", err))
		if s.metrics != nil {
			s.metrics.SemanticDegraded.Inc()
		}
		return nil
	}
	return similarity
}

func (s *ServiceImpl) observe(operation, status string, start time.Time, candidates int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RequestsTotal.WithLabelValues(operation, status).Inc()
	s.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if candidates > 0 {
		s.metrics.CandidatesScored.Observe(float64(candidates))
	}
}

func candidateIDs(candidates []types.ScoredCandidate) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.POI.ID)
	}
	return ids
}

func semanticCacheKey(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "sem:" + hex.EncodeToString(sum[:])
}
