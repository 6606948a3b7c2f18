// internal/store/profile_cached.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const profileCacheKeyPrefix = "user:academic-profile:"

// ProfileSource is the store the redis layer reads through to.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.UserAcademicProfile, error)
}

// CachedProfileStore is a redis read-through in front of a ProfileSource.
// Redis failures are logged and fall through to the source.
type CachedProfileStore struct {
	source ProfileSource
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProfileStore(source ProfileSource, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedProfileStore {
	return &CachedProfileStore{
		source: source,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "profile-cache"}),
	}
}

func ProfileCacheKey(userID string) string {
	return profileCacheKeyPrefix + userID
}

func (s *CachedProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserAcademicProfile, error) {
	key := ProfileCacheKey(userID)

	val, err := s.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var profile models.UserAcademicProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
		s.logger.Warn("discarding undecodable cached profile", map[string]interface{}{"userId": userID})
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("profile cache read failed", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	profile, err := s.source.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(profile)
	if err == nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("profile cache write failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	return profile, nil
}

// Invalidate drops the cached profile so the next read hits the source.
func (s *CachedProfileStore) Invalidate(ctx context.Context, userID string) error {
	return s.redis.Del(ctx, ProfileCacheKey(userID)).Err()
}
