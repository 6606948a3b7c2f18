package getrecommendationstats

import (
	"context"
	"testing"
	"time"

	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/recommendation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStatsReader struct {
	mock.Mock
}

func (m *MockStatsReader) GetStats(ctx context.Context, userID string) (*recommendation.ListResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recommendation.ListResult), args.Error(1)
}

func TestExecute_Stats(t *testing.T) {
	generatedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := models.RecommendationStats{
		Total: 3, Reach: 1, Target: 1, Safety: 1, WithinBudget: 2,
		AvgFitScore: 67.3, Countries: map[string]int{"US": 2, "UK": 1},
	}

	svc := &MockStatsReader{}
	svc.On("GetStats", mock.Anything, "user-1").Return(&recommendation.ListResult{
		UserID: "user-1", Stats: stats, GeneratedAt: generatedAt,
	}, nil)

	h := NewHandler(LoadConfig(), svc, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, stats, out.Stats)
	assert.False(t, out.FromCache)
	require.NotNil(t, out.GeneratedAt)
	assert.Equal(t, generatedAt, *out.GeneratedAt)
	svc.AssertExpectations(t)
}

func TestExecute_ProfileIncomplete(t *testing.T) {
	svc := &MockStatsReader{}
	svc.On("GetStats", mock.Anything, "user-1").Return(&recommendation.ListResult{
		UserID:            "user-1",
		Stats:             recommendation.ComputeStats(nil),
		ProfileIncomplete: true,
		Message:           recommendation.ProfileIncompleteMessage,
	}, nil)

	h := NewHandler(LoadConfig(), svc, logger.NewNoOpLogger())
	out, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	assert.True(t, out.ProfileIncomplete)
	assert.Equal(t, 0, out.Stats.Total)
	assert.Nil(t, out.GeneratedAt)
	assert.NotEmpty(t, out.Message)
}

func TestExecute_ProfileLookupFailure(t *testing.T) {
	svc := &MockStatsReader{}
	svc.On("GetStats", mock.Anything, "user-1").Return(nil, recommendation.ErrProfileLookup)

	h := NewHandler(LoadConfig(), svc, logger.NewNoOpLogger())
	_, err := h.Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeProfileLookupFailed, recommendation.ToStandardError(err, "user-1").Code)
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"userId": "user-1"}`).Valid)
	assert.False(t, inputSchema.Validate(`{"userId": ""}`).Valid)
	assert.False(t, inputSchema.Validate(`{}`).Valid)
}
