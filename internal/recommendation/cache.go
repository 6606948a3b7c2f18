// Package recommendation persists and serves per-user recommendation lists on
// top of the fit engine. Lists are cached whole, one entry per user, and are
// regenerated lazily once older than the freshness window.
package recommendation

import (
	"context"
	"errors"
	"time"

	"college-fit-workers/internal/models"
)

var ErrCacheMiss = errors.New("recommendation cache miss")

// Cache stores exactly one recommendation list per user. Put replaces the
// whole list; on failure the previous entry must be left as it was.
type Cache interface {
	Get(ctx context.Context, userID string) (*models.CacheEntry, error)
	Put(ctx context.Context, userID string, recs []models.Recommendation, generatedAt time.Time) error
	Invalidate(ctx context.Context, userID string) error
}

// Clock is injected so freshness can be tested without sleeping.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
