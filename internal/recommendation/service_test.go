// internal/recommendation/service_test.go
package recommendation

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	apperrors "college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func floatPtr(v float64) *float64 { return &v }

func testProfile() *models.UserAcademicProfile {
	return &models.UserAcademicProfile{
		UserID:          "user-123",
		CurriculumBoard: "CBSE",
		Percentage:      floatPtr(85),
		GPA:             floatPtr(3.7),
		Exams: map[string]models.ExamResult{
			"SAT": {Status: models.ExamStatusCompleted, Score: floatPtr(1400)},
		},
		Financial:       models.FinancialConstraints{MaxBudget: 4000000},
		TargetCountries: []string{"US", "UK"},
		IntendedMajor:   "Computer Science",
	}
}

func testCatalog() []models.CollegeRecord {
	return []models.CollegeRecord{
		{
			ID:             1,
			Name:           "MIT",
			Country:        "US",
			AcceptanceRate: floatPtr(0.04),
			Programs:       models.RawJSON(`["Computer Science", "Mathematics"]`),
			Requirements:   models.RawJSON(`{"sat_range": "1510-1580"}`),
			CostData:       models.RawJSON(`{"tuition_international": 60000, "living_cost": 20000}`),
		},
		{
			ID:             2,
			Name:           "State University",
			Country:        "USA",
			AcceptanceRate: floatPtr(0.65),
			Programs:       models.RawJSON(`["Computer Science", "Business"]`),
			Requirements:   models.RawJSON(`{"test_optional": true}`),
			CostData:       models.RawJSON(`{"tuition_out_of_state": 28000, "living_cost": 12000}`),
		},
		{
			ID:             3,
			Name:           "UK University",
			Country:        "United Kingdom",
			AcceptanceRate: floatPtr(0.35),
			Programs:       models.RawJSON(`[{"name": "Computer Science"}]`),
			Requirements:   models.RawJSON(`{"required_exams": [{"name": "IELTS", "min_score": 7.0}]}`),
			CostData:       models.RawJSON(`{"tuition_international": 30000, "currency": "GBP"}`),
		},
	}
}

type fakeProfiles struct {
	profile     *models.UserAcademicProfile
	err         error
	invalidated []string
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.UserAcademicProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProfiles) Invalidate(ctx context.Context, userID string) error {
	f.invalidated = append(f.invalidated, userID)
	return nil
}

type fakeCatalog struct {
	colleges []models.CollegeRecord
	err      error
	calls    int
}

func (f *fakeCatalog) ListColleges(ctx context.Context) ([]models.CollegeRecord, error) {
	f.calls++
	return f.colleges, f.err
}

// memCache is an in-memory Cache with failure injection.
type memCache struct {
	mu      sync.Mutex
	entries map[string]models.CacheEntry
	getErr  error
	putErr  error
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]models.CacheEntry)}
}

func (c *memCache) Get(ctx context.Context, userID string) (*models.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &e, nil
}

func (c *memCache) Put(ctx context.Context, userID string, recs []models.Recommendation, generatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[userID] = models.CacheEntry{UserID: userID, Recommendations: recs, GeneratedAt: generatedAt}
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

type recordingPublisher struct {
	events []GeneratedEvent
	err    error
}

func (p *recordingPublisher) PublishGenerated(ctx context.Context, event GeneratedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type testDeps struct {
	profiles  *fakeProfiles
	catalog   *fakeCatalog
	cache     *memCache
	publisher *recordingPublisher
	clock     *fakeClock
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)

	deps := &testDeps{
		profiles:  &fakeProfiles{profile: testProfile()},
		catalog:   &fakeCatalog{colleges: testCatalog()},
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
		clock:     &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	svc := NewService(eng, deps.profiles, deps.catalog, deps.cache, logger.NewTestLogger(t), Options{
		FreshnessWindow: 24 * time.Hour,
		Clock:           deps.clock.Now,
		Publisher:       deps.publisher,
		Backend:         "memory",
	})
	return svc, deps
}

// ==========================
// Generate
// ==========================

func TestService_Generate(t *testing.T) {
	svc, deps := newTestService(t)

	result, err := svc.Generate(context.Background(), "user-123")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.True(t, result.Persisted)
	assert.Equal(t, deps.clock.now, result.GeneratedAt)
	require.Len(t, result.Recommendations, 3)

	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Reach)
	assert.Equal(t, 1, result.Stats.Target)
	assert.Equal(t, 1, result.Stats.Safety)
	assert.Equal(t, map[string]int{"US": 2, "UK": 1}, result.Stats.Countries)

	entry, err := deps.cache.Get(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, result.Recommendations, entry.Recommendations)
	assert.Equal(t, deps.clock.now, entry.GeneratedAt)

	require.Len(t, deps.publisher.events, 1)
	event := deps.publisher.events[0]
	assert.Equal(t, EventRecommendationsGenerated, event.Event)
	assert.Equal(t, result.RunID, event.RunID)
	assert.True(t, event.Persisted)
}

func TestService_GenerateIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Generate(context.Background(), "user-123")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "user-123")
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestService_GeneratePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(d *testDeps)
		wantErr error
		code    apperrors.ErrorCode
	}{
		{
			name:    "incomplete profile",
			setup:   func(d *testDeps) { d.profiles.profile.CurriculumBoard = "" },
			wantErr: engine.ErrProfileIncomplete,
			code:    apperrors.ErrCodeProfileIncomplete,
		},
		{
			name:    "missing profile",
			setup:   func(d *testDeps) { d.profiles.err = store.ErrProfileNotFound },
			wantErr: engine.ErrProfileIncomplete,
			code:    apperrors.ErrCodeProfileIncomplete,
		},
		{
			name:    "profile store down",
			setup:   func(d *testDeps) { d.profiles.err = errors.New("connection refused") },
			wantErr: ErrProfileLookup,
			code:    apperrors.ErrCodeProfileLookupFailed,
		},
		{
			name:    "empty catalog",
			setup:   func(d *testDeps) { d.catalog.colleges = nil },
			wantErr: engine.ErrEmptyCatalog,
			code:    apperrors.ErrCodeEmptyCatalog,
		},
		{
			name:    "catalog down",
			setup:   func(d *testDeps) { d.catalog.err = errors.New("index not found") },
			wantErr: ErrCatalogLookup,
			code:    apperrors.ErrCodeCatalogLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService(t)
			tt.setup(deps)

			result, err := svc.Generate(context.Background(), "user-123")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.code, ToStandardError(err, "user-123").Code)
			assert.Equal(t, 0, deps.cache.puts, "nothing is written on failure")
			assert.Empty(t, deps.publisher.events)
		})
	}
}

func TestService_GenerateCacheWriteFailure(t *testing.T) {
	svc, deps := newTestService(t)

	previous := models.CacheEntry{
		UserID:          "user-123",
		Recommendations: []models.Recommendation{{CollegeID: 99, CollegeName: "Old"}},
		GeneratedAt:     deps.clock.now.Add(-48 * time.Hour),
	}
	deps.cache.entries["user-123"] = previous
	deps.cache.putErr = errors.New("disk full")

	result, err := svc.Generate(context.Background(), "user-123")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheWrite)
	assert.Equal(t, apperrors.ErrCodeCacheWriteFailed, ToStandardError(err, "user-123").Code)

	require.NotNil(t, result, "computed list is still handed back")
	assert.False(t, result.Persisted)
	assert.Len(t, result.Recommendations, 3)

	assert.Equal(t, previous, deps.cache.entries["user-123"], "previous entry is left in place")
	assert.Empty(t, deps.publisher.events)
}

func TestService_GeneratePublishFailureIsNotFatal(t *testing.T) {
	svc, deps := newTestService(t)
	deps.publisher.err = errors.New("sns throttled")

	result, err := svc.Generate(context.Background(), "user-123")
	require.NoError(t, err)
	assert.True(t, result.Persisted)
}

// ==========================
// Read paths
// ==========================

func TestService_GetAllFreshness(t *testing.T) {
	tests := []struct {
		name          string
		age           time.Duration
		wantFromCache bool
		wantCalls     int
	}{
		{name: "23 hours old is served from cache", age: 23 * time.Hour, wantFromCache: true, wantCalls: 1},
		{name: "25 hours old is regenerated", age: 25 * time.Hour, wantFromCache: false, wantCalls: 2},
		{name: "exactly 24 hours old is stale", age: 24 * time.Hour, wantFromCache: false, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := newTestService(t)
			ctx := context.Background()

			_, err := svc.Generate(ctx, "user-123")
			require.NoError(t, err)
			generated := deps.clock.now

			deps.clock.now = generated.Add(tt.age)
			result, err := svc.GetAll(ctx, "user-123", models.RecommendationFilters{})
			require.NoError(t, err)

			assert.Equal(t, tt.wantFromCache, result.FromCache)
			assert.Equal(t, tt.wantCalls, deps.catalog.calls)
			assert.Len(t, result.Recommendations, 3)
			if tt.wantFromCache {
				assert.Equal(t, generated, result.GeneratedAt)
			} else {
				assert.Equal(t, deps.clock.now, result.GeneratedAt)
				assert.Equal(t, deps.clock.now, deps.cache.entries["user-123"].GeneratedAt, "stale entry is overwritten")
			}
		})
	}
}

func TestService_GetAllMissGenerates(t *testing.T) {
	svc, deps := newTestService(t)

	result, err := svc.GetAll(context.Background(), "user-123", models.RecommendationFilters{})
	require.NoError(t, err)

	assert.False(t, result.FromCache)
	assert.Len(t, result.Recommendations, 3)
	assert.Equal(t, 1, deps.cache.puts)
	assert.False(t, result.ProfileIncomplete)
}

func TestService_GetAllProfileIncomplete(t *testing.T) {
	svc, deps := newTestService(t)
	deps.profiles.profile.CurriculumBoard = "  "

	result, err := svc.GetAll(context.Background(), "user-123", models.RecommendationFilters{})
	require.NoError(t, err)

	assert.True(t, result.ProfileIncomplete)
	assert.Equal(t, ProfileIncompleteMessage, result.Message)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, 0, result.Stats.Total)
}

func TestService_GetAllFiltersKeepFullStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.GetAll(ctx, "user-123", models.RecommendationFilters{Country: "United States"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 2)
	for _, r := range result.Recommendations {
		assert.Equal(t, "US", models.CanonicalCountry(r.Country))
	}
	assert.Equal(t, 3, result.Stats.Total, "stats describe the unfiltered list")

	reach, err := svc.GetAll(ctx, "user-123", models.RecommendationFilters{Classification: models.ClassificationReach})
	require.NoError(t, err)
	require.Len(t, reach.Recommendations, 1)
	assert.Equal(t, "MIT", reach.Recommendations[0].CollegeName)
	assert.True(t, reach.FromCache)
}

func TestService_GetAllCacheReadErrorRegenerates(t *testing.T) {
	svc, deps := newTestService(t)
	deps.cache.getErr = ErrCacheRead

	result, err := svc.GetAll(context.Background(), "user-123", models.RecommendationFilters{})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Recommendations, 3)
}

func TestService_GetAllServesOnWriteFailure(t *testing.T) {
	svc, deps := newTestService(t)
	deps.cache.putErr = errors.New("read-only transaction")

	result, err := svc.GetAll(context.Background(), "user-123", models.RecommendationFilters{})
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 3)
	assert.False(t, result.FromCache)
}

func TestService_GetAllPropagatesLookupFailure(t *testing.T) {
	svc, deps := newTestService(t)
	deps.catalog.err = errors.New("timeout")

	_, err := svc.GetAll(context.Background(), "user-123", models.RecommendationFilters{})
	assert.ErrorIs(t, err, ErrCatalogLookup)
}

func TestService_GetStats(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.GetStats(context.Background(), "user-123")
	require.NoError(t, err)

	assert.Nil(t, result.Recommendations)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.WithinBudget)
	assert.Greater(t, result.Stats.AvgFitScore, 0.0)
}

func TestService_GetForCollege(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.GetForCollege(ctx, "user-123", 2)
	require.NoError(t, err)
	assert.Equal(t, "State University", rec.CollegeName)
	assert.Equal(t, models.ClassificationSafety, rec.Classification)

	_, err = svc.GetForCollege(ctx, "user-123", 404)
	assert.ErrorIs(t, err, ErrRecommendationNotFound)
	stdErr := ToStandardError(err, "user-123")
	assert.Equal(t, apperrors.ErrCodeRecommendationNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Details, "collegeId: 404")
}

func TestService_GetForCollegeIncompleteProfile(t *testing.T) {
	svc, deps := newTestService(t)
	deps.profiles.profile.CurriculumBoard = ""

	_, err := svc.GetForCollege(context.Background(), "user-123", 1)
	assert.ErrorIs(t, err, engine.ErrProfileIncomplete)
}

func TestService_Invalidate(t *testing.T) {
	svc, deps := newTestService(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user-123")
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "user-123"))
	_, err = deps.cache.Get(ctx, "user-123")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, []string{"user-123"}, deps.profiles.invalidated)

	result, err := svc.GetAll(ctx, "user-123", models.RecommendationFilters{})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, deps.catalog.calls)
}

func TestService_Classify(t *testing.T) {
	svc, _ := newTestService(t)
	catalog := testCatalog()

	pair, err := svc.Classify(testProfile(), &catalog[0])
	require.NoError(t, err)
	assert.Equal(t, models.MatchReach, pair.MatchLabel)
	assert.Equal(t, models.ClassificationReach, pair.Recommendation.Classification)
}

// ==========================
// Error mapping
// ==========================

func TestToStandardError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"invalid score", engine.ErrInvalidScore, apperrors.ErrCodeInvalidScore},
		{"cache read", ErrCacheRead, apperrors.ErrCodeCacheReadFailed},
		{"deadline", context.DeadlineExceeded, apperrors.ErrCodeQueryTimeout},
		{"standard error passes through", apperrors.NewInvalidInputError("bad"), apperrors.ErrCodeInvalidInput},
		{"unknown", errors.New("boom"), apperrors.ErrCodeInternal},
		{"profile lookup", fmt.Errorf("%w: %w", ErrProfileLookup, errors.New("relation missing")), apperrors.ErrCodeProfileLookupFailed},
		{"profile store bad conn", fmt.Errorf("%w: %w", ErrProfileLookup, driver.ErrBadConn), apperrors.ErrCodeDatabaseConnectionFailed},
		{"catalog dial refused", fmt.Errorf("%w: %w", ErrCatalogLookup, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}), apperrors.ErrCodeDatabaseConnectionFailed},
		{"cache read bad conn stays cache", fmt.Errorf("%w: %w", ErrCacheRead, driver.ErrBadConn), apperrors.ErrCodeCacheReadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ToStandardError(tt.err, "user-1").Code)
		})
	}

	assert.True(t, ToStandardError(fmt.Errorf("%w: %w", ErrProfileLookup, sql.ErrConnDone), "user-1").Retryable)
}
