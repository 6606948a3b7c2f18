// internal/recommendation/cache_postgres.go
package recommendation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"college-fit-workers/internal/common/database"
	"college-fit-workers/internal/models"
)

const createCacheTableSQL = `
	CREATE TABLE IF NOT EXISTS recommendation_cache (
		user_id         TEXT PRIMARY KEY,
		recommendations JSONB NOT NULL,
		generated_at    TIMESTAMPTZ NOT NULL
	)`

// PostgresCache keeps one recommendation_cache row per user.
type PostgresCache struct {
	db *sql.DB
}

func NewPostgresCache(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db}
}

// EnsureSchema creates the cache table when it does not exist yet.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createCacheTableSQL); err != nil {
		return fmt.Errorf("create recommendation_cache: %w", err)
	}
	return nil
}

func (c *PostgresCache) Get(ctx context.Context, userID string) (*models.CacheEntry, error) {
	var (
		payload     []byte
		generatedAt time.Time
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT recommendations, generated_at FROM recommendation_cache WHERE user_id = $1`,
		userID,
	).Scan(&payload, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(payload, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrCacheRead, err)
	}
	return &models.CacheEntry{
		UserID:          userID,
		Recommendations: recs,
		GeneratedAt:     generatedAt.UTC(),
	}, nil
}

// Put deletes the user's row and inserts the new list in one transaction.
func (c *PostgresCache) Put(ctx context.Context, userID string, recs []models.Recommendation, generatedAt time.Time) error {
	if recs == nil {
		recs = []models.Recommendation{}
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}

	return database.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recommendation_cache WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete cached recommendations: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recommendation_cache (user_id, recommendations, generated_at) VALUES ($1, $2, $3)`,
			userID, payload, generatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("insert cached recommendations: %w", err)
		}
		return nil
	})
}

func (c *PostgresCache) Invalidate(ctx context.Context, userID string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM recommendation_cache WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("invalidate recommendation cache: %w", err)
	}
	return nil
}
