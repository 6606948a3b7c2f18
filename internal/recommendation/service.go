// internal/recommendation/service.go
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/common/metrics"
	"college-fit-workers/internal/common/observability"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/store"

	"github.com/google/uuid"
)

// ProfileIncompleteMessage is returned to callers instead of an empty list.
const ProfileIncompleteMessage = "Please complete your academic profile to get recommendations"

var (
	ErrProfileLookup          = errors.New("profile lookup failed")
	ErrCatalogLookup          = errors.New("catalog lookup failed")
	ErrCacheRead              = errors.New("recommendation cache read failed")
	ErrCacheWrite             = errors.New("recommendation cache write failed")
	ErrRecommendationNotFound = errors.New("recommendation not found")
)

// NotFoundError names the college that has no recommendation for the user.
type NotFoundError struct {
	UserID    string
	CollegeID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no recommendation for college %d (user %s)", e.CollegeID, e.UserID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecommendationNotFound
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserAcademicProfile, error)
}

type CatalogStore interface {
	ListColleges(ctx context.Context) ([]models.CollegeRecord, error)
}

// profileInvalidator is implemented by profile stores that cache.
type profileInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type Options struct {
	FreshnessWindow time.Duration
	Clock           Clock
	Publisher       Publisher
	// Backend labels metrics with the cache implementation in use.
	Backend       string
	Observability *observability.Observability
}

// Service is the read-through recommendation cache. Concurrent misses for the
// same user are not coalesced: each one generates and the last write wins.
type Service struct {
	engine    *engine.Engine
	profiles  ProfileStore
	catalog   CatalogStore
	cache     Cache
	logger    logger.Logger
	window    time.Duration
	clock     Clock
	publisher Publisher
	backend   string
	obs       *observability.Observability
}

func NewService(eng *engine.Engine, profiles ProfileStore, catalog CatalogStore, cache Cache, log logger.Logger, opts Options) *Service {
	s := &Service{
		engine:    eng,
		profiles:  profiles,
		catalog:   catalog,
		cache:     cache,
		logger:    log.WithFields(map[string]interface{}{"component": "recommendation-service"}),
		window:    opts.FreshnessWindow,
		clock:     opts.Clock,
		publisher: opts.Publisher,
		backend:   opts.Backend,
		obs:       opts.Observability,
	}
	if s.window <= 0 {
		s.window = 24 * time.Hour
	}
	if s.clock == nil {
		s.clock = systemClock
	}
	if s.publisher == nil {
		s.publisher = NopPublisher{}
	}
	return s
}

// GenerateResult is the outcome of one generation run.
type GenerateResult struct {
	RunID           string
	UserID          string
	GeneratedAt     time.Time
	Recommendations []models.Recommendation
	Stats           models.RecommendationStats
	Persisted       bool
}

// ListResult is what read paths return. When ProfileIncomplete is set the
// other fields are empty and Message tells the user what to do.
type ListResult struct {
	UserID            string
	Recommendations   []models.Recommendation
	Stats             models.RecommendationStats
	GeneratedAt       time.Time
	FromCache         bool
	ProfileIncomplete bool
	Message           string
}

// Generate always recomputes from the current profile and catalog and replaces
// the cached list. If the cache write fails the computed result is still
// returned together with an error wrapping ErrCacheWrite; the previous entry
// is left in place.
func (s *Service) Generate(ctx context.Context, userID string) (*GenerateResult, error) {
	start := time.Now()

	result, err := s.compute(ctx, userID)
	if err != nil {
		metrics.RecommendationGenerations.WithLabelValues(generationResult(err)).Inc()
		return nil, err
	}

	if err := s.cache.Put(ctx, userID, result.Recommendations, result.GeneratedAt); err != nil {
		metrics.RecommendationGenerations.WithLabelValues("cache_write_failed").Inc()
		s.logger.Error("failed to persist recommendations", map[string]interface{}{
			"userId": userID,
			"runId":  result.RunID,
			"error":  err.Error(),
		})
		return result, fmt.Errorf("%w: %w", ErrCacheWrite, err)
	}
	result.Persisted = true

	elapsed := time.Since(start)
	metrics.RecommendationGenerations.WithLabelValues("success").Inc()
	metrics.RecommendationGenerationDuration.Observe(elapsed.Seconds())
	metrics.RecommendationsPerRun.Observe(float64(len(result.Recommendations)))
	if s.obs != nil {
		s.obs.RecordRecommendations(ctx, len(result.Recommendations), s.backend)
		s.obs.RecordClassifications(ctx, map[string]int{
			string(models.ClassificationReach):  result.Stats.Reach,
			string(models.ClassificationTarget): result.Stats.Target,
			string(models.ClassificationSafety): result.Stats.Safety,
		})
	}

	s.logger.Info("recommendations generated", map[string]interface{}{
		"userId":   userID,
		"runId":    result.RunID,
		"count":    len(result.Recommendations),
		"reach":    result.Stats.Reach,
		"target":   result.Stats.Target,
		"safety":   result.Stats.Safety,
		"duration": elapsed.String(),
	})

	s.publish(ctx, result)
	return result, nil
}

func (s *Service) compute(ctx context.Context, userID string) (*GenerateResult, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return nil, fmt.Errorf("%w: no profile for user %s", engine.ErrProfileIncomplete, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileLookup, err)
	}
	if !profile.IsComplete() {
		return nil, engine.ErrProfileIncomplete
	}

	colleges, err := s.catalog.ListColleges(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLookup, err)
	}

	recs, err := s.engine.Generate(profile, colleges)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		RunID:           uuid.NewString(),
		UserID:          userID,
		GeneratedAt:     s.clock().UTC(),
		Recommendations: recs,
		Stats:           ComputeStats(recs),
	}, nil
}

func (s *Service) publish(ctx context.Context, result *GenerateResult) {
	err := s.publisher.PublishGenerated(ctx, GeneratedEvent{
		Event:       EventRecommendationsGenerated,
		RunID:       result.RunID,
		UserID:      result.UserID,
		GeneratedAt: result.GeneratedAt,
		Persisted:   result.Persisted,
		Stats:       result.Stats,
	})
	if err != nil {
		s.logger.Warn("failed to publish generation event", map[string]interface{}{
			"userId": result.UserID,
			"runId":  result.RunID,
			"error":  err.Error(),
		})
	}
}

// load returns a fresh cached entry or generates a new one.
func (s *Service) load(ctx context.Context, userID string) (*models.CacheEntry, bool, error) {
	entry, err := s.cache.Get(ctx, userID)
	switch {
	case err == nil:
		age := s.clock().Sub(entry.GeneratedAt)
		if age < s.window {
			metrics.RecommendationCacheLookups.WithLabelValues("hit").Inc()
			s.logger.Debug("recommendation cache hit", map[string]interface{}{
				"userId": userID,
				"age":    age.String(),
			})
			return entry, true, nil
		}
		metrics.RecommendationCacheLookups.WithLabelValues("stale").Inc()
		s.logger.Debug("recommendation cache stale", map[string]interface{}{
			"userId": userID,
			"age":    age.String(),
		})
	case errors.Is(err, ErrCacheMiss):
		metrics.RecommendationCacheLookups.WithLabelValues("miss").Inc()
		s.logger.Debug("recommendation cache miss", map[string]interface{}{"userId": userID})
	default:
		// an unreadable entry is regenerated rather than failing the read
		metrics.RecommendationCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("recommendation cache read failed, regenerating", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	result, err := s.Generate(ctx, userID)
	if err != nil && (result == nil || !errors.Is(err, ErrCacheWrite)) {
		return nil, false, err
	}
	// on a failed write the fresh list is still served
	return &models.CacheEntry{
		UserID:          userID,
		Recommendations: result.Recommendations,
		GeneratedAt:     result.GeneratedAt,
	}, false, nil
}

// GetAll serves the user's list, filtered and sorted. Stats always describe
// the full list.
func (s *Service) GetAll(ctx context.Context, userID string, filters models.RecommendationFilters) (*ListResult, error) {
	entry, fromCache, err := s.load(ctx, userID)
	if errors.Is(err, engine.ErrProfileIncomplete) {
		return incompleteResult(userID), nil
	}
	if err != nil {
		return nil, err
	}

	return &ListResult{
		UserID:          userID,
		Recommendations: ApplyFilters(entry.Recommendations, filters),
		Stats:           ComputeStats(entry.Recommendations),
		GeneratedAt:     entry.GeneratedAt,
		FromCache:       fromCache,
	}, nil
}

func (s *Service) GetStats(ctx context.Context, userID string) (*ListResult, error) {
	entry, fromCache, err := s.load(ctx, userID)
	if errors.Is(err, engine.ErrProfileIncomplete) {
		return incompleteResult(userID), nil
	}
	if err != nil {
		return nil, err
	}

	return &ListResult{
		UserID:      userID,
		Stats:       ComputeStats(entry.Recommendations),
		GeneratedAt: entry.GeneratedAt,
		FromCache:   fromCache,
	}, nil
}

// GetForCollege returns the user's recommendation for one college. An
// incomplete profile is reported as engine.ErrProfileIncomplete.
func (s *Service) GetForCollege(ctx context.Context, userID string, collegeID int64) (*models.Recommendation, error) {
	entry, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range entry.Recommendations {
		if entry.Recommendations[i].CollegeID == collegeID {
			rec := entry.Recommendations[i]
			return &rec, nil
		}
	}
	return nil, &NotFoundError{UserID: userID, CollegeID: collegeID}
}

// Invalidate drops the cached list, and the cached profile when the profile
// store keeps one, so the next read regenerates from current data.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		return err
	}
	if inv, ok := s.profiles.(profileInvalidator); ok {
		if err := inv.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate cached profile", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}
	s.logger.Info("recommendations invalidated", map[string]interface{}{"userId": userID})
	return nil
}

// Classify scores a single inline pair without touching the cache.
func (s *Service) Classify(profile *models.UserAcademicProfile, college *models.CollegeRecord) (*engine.PairResult, error) {
	return s.engine.EvaluatePair(profile, college)
}

func incompleteResult(userID string) *ListResult {
	return &ListResult{
		UserID:            userID,
		Recommendations:   []models.Recommendation{},
		Stats:             ComputeStats(nil),
		ProfileIncomplete: true,
		Message:           ProfileIncompleteMessage,
	}
}

func generationResult(err error) string {
	switch {
	case errors.Is(err, engine.ErrProfileIncomplete):
		return "profile_incomplete"
	case errors.Is(err, engine.ErrEmptyCatalog):
		return "empty_catalog"
	case errors.Is(err, ErrProfileLookup), errors.Is(err, ErrCatalogLookup):
		return "lookup_failed"
	default:
		return "error"
	}
}
