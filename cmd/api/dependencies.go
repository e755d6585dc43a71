package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/loci-recommend-engine/internal/corpus"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/intent"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/reasoning"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/recommend"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/recommend/handler"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/scoring"
	"github.com/FACorreiaa/loci-recommend-engine/internal/domain/selection"
	"github.com/FACorreiaa/loci-recommend-engine/internal/embedding"
	"github.com/FACorreiaa/loci-recommend-engine/internal/session"
	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
	"github.com/FACorreiaa/loci-recommend-engine/pkg/config"
	"github.com/FACorreiaa/loci-recommend-engine/pkg/db"
	"github.com/FACorreiaa/loci-recommend-engine/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Engine
	CorpusRepo       corpus.Repository
	Snapshotter      *corpus.Snapshotter
	Sessions         *session.Store
	Extractor        *intent.Extractor
	Scorer           *scoring.Scorer
	Embedder         embedding.Client
	RecommendService recommend.Service

	// Handlers
	RecommendHandler *handler.RecommendHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	deps.Metrics = observability.NewMetrics(deps.Registry)

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := deps.initEngine(ctx); err != nil {
		return nil, fmt.Errorf("failed to init engine: %w", err)
	}
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations("migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initEngine initializes the recommendation pipeline
func (d *Dependencies) initEngine(ctx context.Context) error {
	lexicon, err := intent.LoadLexicon(d.Config.Engine.LexiconPath)
	if err != nil {
		return fmt.Errorf("failed to load lexicon: %w", err)
	}
	d.Extractor, err = intent.NewExtractor(lexicon)
	if err != nil {
		return fmt.Errorf("failed to build intent extractor: %w", err)
	}

	repo := corpus.NewPostgresRepository(d.DB.Pool, d.Logger)
	d.CorpusRepo = repo
	d.Snapshotter = corpus.NewSnapshotter(
		repo,
		time.Duration(d.Config.Engine.SnapshotTTLSeconds)*time.Second,
		d.Logger,
	)

	d.Sessions = session.NewStore(d.Logger)

	scorerCfg := scoring.DefaultConfig()
	scorerCfg.MinScore = d.Config.Engine.MinScore
	scorerCfg.InterestThreshold = d.Config.Engine.InterestThreshold
	if len(d.Config.Engine.SensitiveCategories) > 0 {
		sensitive := make([]types.Category, 0, len(d.Config.Engine.SensitiveCategories))
		for _, c := range d.Config.Engine.SensitiveCategories {
			sensitive = append(sensitive, types.Category(c))
		}
		scorerCfg.SensitiveCategories = sensitive
	}
	d.Scorer = scoring.NewScorer(scorerCfg, d.Logger)

	if d.Config.Embedding.Enabled {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			d.Logger.Warn("GEMINI_API_KEY not set; running without semantic scoring")
		} else {
			embedder, err := embedding.NewGenAIClient(ctx, apiKey, d.Config.Embedding.Model, d.Logger)
			if err != nil {
				return fmt.Errorf("failed to create embedding client: %w", err)
			}
			d.Embedder = embedder
		}
	}

	conversationProfile, err := scoring.ProfileByName(d.Config.Engine.WeightProfile)
	if err != nil {
		return fmt.Errorf("failed to resolve weight profile: %w", err)
	}

	serviceCfg := recommend.DefaultConfig()
	serviceCfg.ConversationProfile = conversationProfile
	serviceCfg.Selection = selection.Config{
		MaxTotal:       d.Config.Engine.MaxTotal,
		MaxHighlighted: d.Config.Engine.MaxHighlighted,
		PerCategoryCap: d.Config.Engine.PerCategoryCap,
	}
	serviceCfg.Reasoning = reasoning.Config{
		ForReasoning:         d.Config.Engine.ForReasoning,
		FinalRecommendations: d.Config.Engine.FinalRecommendations,
		DiscoverPerCategory:  reasoning.DefaultConfig().DiscoverPerCategory,
		MinDiscoverRating:    reasoning.DefaultConfig().MinDiscoverRating,
	}
	serviceCfg.EmbeddingTopK = d.Config.Embedding.TopK
	serviceCfg.EmbeddingTimeout = time.Duration(d.Config.Embedding.TimeoutMs) * time.Millisecond
	serviceCfg.RefreshRadiusKm = d.Config.Engine.RefreshRadiusKm

	d.RecommendService = recommend.NewService(
		d.Extractor,
		d.Scorer,
		d.Snapshotter,
		d.Sessions,
		d.Embedder,
		d.Metrics,
		serviceCfg,
		d.Logger,
	)

	d.Logger.Info("recommendation engine initialized",
		slog.String("weight_profile", d.Config.Engine.WeightProfile),
		slog.Bool("semantic", d.Embedder != nil))
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.RecommendHandler = handler.NewRecommendHandler(d.RecommendService, d.Sessions, d.Logger)
	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
