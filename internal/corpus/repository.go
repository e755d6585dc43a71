// Package corpus supplies the validated POI snapshot the engine scores
// against. Records are ingested, deduplicated and enriched upstream; this
// layer only reads.
package corpus

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/FACorreiaa/loci-recommend-engine/internal/types"
)

// Repository is the read-only corpus contract.
type Repository interface {
	// GetActivePOIs returns the current active POI snapshot.
	GetActivePOIs(ctx context.Context) ([]types.POIDetailedInfo, error)
	// SimilarPOIs returns up to k (poiID, similarity) pairs for a query
	// embedding, similarity in [0,1].
	SimilarPOIs(ctx context.Context, vector []float32, k int) (map[uuid.UUID]float64, error)
}

// DBTX is the pgx surface the repository needs; *pgxpool.Pool and pgxmock
// pools both satisfy it.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository reads the poi corpus from Postgres.
type PostgresRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresRepository creates the Postgres-backed corpus repository.
func NewPostgresRepository(db DBTX, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GetActivePOIs loads all active corpus records.
func (r *PostgresRepository) GetActivePOIs(ctx context.Context) ([]types.POIDetailedInfo, error) {
	query, args, err := psql.
		Select(
			"id", "name", "category", "subcategory",
			"description", "short_description", "highlights", "tags",
			"latitude", "longitude", "island", "district", "area",
			"price_tier", "currency", "rating", "review_count",
			"has_image", "has_website", "has_hours", "is_active",
		).
		From("pois").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build poi snapshot query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query poi snapshot: %w", err)
	}
	defer rows.Close()

	var pois []types.POIDetailedInfo
	for rows.Next() {
		var p types.POIDetailedInfo
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.Subcategory,
			&p.Description, &p.ShortDescription, &p.Highlights, &p.Tags,
			&p.Latitude, &p.Longitude, &p.Island, &p.District, &p.Area,
			&p.PriceTier, &p.Currency, &p.Rating, &p.ReviewCount,
			&p.HasImage, &p.HasWebsite, &p.HasHours, &p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan poi row: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read poi snapshot: %w", err)
	}

	r.logger.DebugContext(ctx, "loaded corpus snapshot", slog.Int("pois", len(pois)))
	return pois, nil
}

const similarPOIsQuery = `
SELECT id, 1 - (embedding <=> $1) AS similarity
FROM pois
WHERE is_active = TRUE AND embedding IS NOT NULL
ORDER BY embedding <=> $1
LIMIT $2`

// SimilarPOIs runs a cosine-distance lookup against the corpus embeddings.
func (r *PostgresRepository) SimilarPOIs(ctx context.Context, vector []float32, k int) (map[uuid.UUID]float64, error) {
	rows, err := r.db.Query(ctx, similarPOIsQuery, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar pois: %w", err)
	}
	defer rows.Close()

	similarities := make(map[uuid.UUID]float64, k)
	for rows.Next() {
		var id uuid.UUID
		var similarity float64
		if err := rows.Scan(&id, &similarity); err != nil {
			return nil, fmt.Errorf("failed to scan similarity row: %w", err)
		}
		if similarity < 0 {
			similarity = 0
		}
		if similarity > 1 {
			similarity = 1
		}
		similarities[id] = similarity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read similarity rows: %w", err)
	}
	return similarities, nil
}
