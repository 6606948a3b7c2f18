package classifycollegefit

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"college-fit-workers/internal/common/errors"
	"college-fit-workers/internal/common/logger"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"
	"college-fit-workers/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineClassifier exercises the real scoring path.
type engineClassifier struct {
	engine *engine.Engine
}

func (c engineClassifier) Classify(profile *models.UserAcademicProfile, college *models.CollegeRecord) (*engine.PairResult, error) {
	return c.engine.EvaluatePair(profile, college)
}

func newTestHandler(t *testing.T) *Handler {
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	return NewHandler(LoadConfig(), engineClassifier{engine: eng}, logger.NewTestLogger(t))
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "college-fit",
		ElementId:          "Activity_ClassifyCollegeFit",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func profileVars() map[string]interface{} {
	return map[string]interface{}{
		"userId":          "user-123",
		"curriculumBoard": "CBSE",
		"percentage":      85,
		"gpa":             3.7,
		"examScores":      map[string]interface{}{"SAT": 1400},
		"maxBudget":       4000000,
		"targetCountries": []string{"US", "UK"},
		"intendedMajor":   "Computer Science",
	}
}

func mitVars() map[string]interface{} {
	return map[string]interface{}{
		"collegeId":      1,
		"collegeName":    "MIT",
		"country":        "US",
		"acceptanceRate": 0.04,
		"programs":       []string{"Computer Science", "Mathematics"},
		"requirements":   map[string]interface{}{"sat_range": "1510-1580"},
		"costData":       map[string]interface{}{"tuition_international": 60000, "living_cost": 20000},
	}
}

// ==========================
// Parsing
// ==========================

func TestParseInput(t *testing.T) {
	h := newTestHandler(t)

	input, stdErr := h.parseInput(createMockJob(1, map[string]interface{}{
		"profile": profileVars(),
		"college": mitVars(),
	}))
	require.Nil(t, stdErr)

	assert.Equal(t, "CBSE", input.Profile.CurriculumBoard)
	assert.Equal(t, 4000000.0, input.Profile.Financial.MaxBudget)
	assert.Equal(t, int64(1), input.College.ID)
	assert.Equal(t, "MIT", input.College.Name)
	require.NotNil(t, input.College.AcceptanceRate)
	assert.Equal(t, 0.04, *input.College.AcceptanceRate)
}

func TestParseInput_Rejects(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		vars map[string]interface{}
	}{
		{"missing college", map[string]interface{}{"profile": profileVars()}},
		{"missing profile", map[string]interface{}{"college": mitVars()}},
		{"college without a name", map[string]interface{}{"profile": profileVars(), "college": map[string]interface{}{"country": "US"}}},
		{"profile not an object", map[string]interface{}{"profile": "CBSE", "college": mitVars()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stdErr := h.parseInput(createMockJob(2, tt.vars))
			require.NotNil(t, stdErr)
			assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
		})
	}
}

// ==========================
// Execute
// ==========================

func TestExecute_ClassifiesInlinePair(t *testing.T) {
	h := newTestHandler(t)

	input, stdErr := h.parseInput(createMockJob(1, map[string]interface{}{
		"profile": profileVars(),
		"college": mitVars(),
	}))
	require.Nil(t, stdErr)

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, int64(1), out.CollegeID)
	assert.Equal(t, models.ClassificationReach, out.Classification)
	assert.Equal(t, models.MatchReach, out.MatchLabel)
	assert.Equal(t, models.SelectivityHighly, out.Selectivity)
	assert.GreaterOrEqual(t, out.Score, 0)
	assert.LessOrEqual(t, out.Score, 100)
	assert.NotEmpty(t, out.Explanation.Summary)

	found := false
	for _, reason := range out.Explanation.Reasons {
		if strings.Contains(reason, "Computer Science") {
			found = true
		}
	}
	assert.True(t, found, "expected a program-match reason, got %v", out.Explanation.Reasons)
}

func TestExecute_IncompleteProfile(t *testing.T) {
	h := newTestHandler(t)

	vars := profileVars()
	delete(vars, "curriculumBoard")
	input, stdErr := h.parseInput(createMockJob(1, map[string]interface{}{"profile": vars, "college": mitVars()}))
	require.Nil(t, stdErr)

	_, err := h.Execute(context.Background(), input)
	require.ErrorIs(t, err, engine.ErrProfileIncomplete)

	stdErr = recommendation.ToStandardError(err, "user-123")
	assert.Equal(t, errors.ErrCodeProfileIncomplete, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestExecute_CancelledContext(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Execute(ctx, &Input{Profile: &models.UserAcademicProfile{}, College: &models.CollegeRecord{}})
	assert.ErrorIs(t, err, context.Canceled)
}
