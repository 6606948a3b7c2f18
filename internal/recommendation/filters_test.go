// internal/recommendation/filters_test.go
package recommendation

import (
	"context"
	"testing"

	"college-fit-workers/internal/common/config"
	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func filterFixture() []models.Recommendation {
	return []models.Recommendation{
		{
			CollegeID: 1, CollegeName: "MIT", Country: "US", AcceptanceRate: floatPtr(0.04),
			Classification: models.ClassificationReach, FitScore: 48,
			Eligibility:  models.Eligibility{Status: models.EligibilityEligible},
			FinancialFit: models.FinancialFit{Known: true, EstimatedCostUSD: 80000, WithinBudget: false},
		},
		{
			CollegeID: 2, CollegeName: "State University", Country: "USA", AcceptanceRate: floatPtr(0.65),
			Classification: models.ClassificationSafety, FitScore: 84,
			Eligibility:  models.Eligibility{Status: models.EligibilityEligible},
			FinancialFit: models.FinancialFit{Known: true, EstimatedCostUSD: 40000, WithinBudget: true},
		},
		{
			CollegeID: 3, CollegeName: "UK University", Country: "United Kingdom", AcceptanceRate: floatPtr(0.35),
			Classification: models.ClassificationTarget, FitScore: 70,
			Eligibility:  models.Eligibility{Status: models.EligibilityConditional},
			FinancialFit: models.FinancialFit{Known: true, EstimatedCostUSD: 38100, WithinBudget: true},
		},
		{
			CollegeID: 4, CollegeName: "Unknown Cost College", Country: "CA",
			Classification: models.ClassificationTarget, FitScore: 70,
			Eligibility: models.Eligibility{Status: models.EligibilityNotEligible},
		},
	}
}

func names(recs []models.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.CollegeName)
	}
	return out
}

// ==========================
// ApplyFilters
// ==========================

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters models.RecommendationFilters
		want    []string
	}{
		{
			name:    "no filters sorts by fit score then name",
			filters: models.RecommendationFilters{},
			want:    []string{"State University", "UK University", "Unknown Cost College", "MIT"},
		},
		{
			name:    "classification",
			filters: models.RecommendationFilters{Classification: models.ClassificationTarget},
			want:    []string{"UK University", "Unknown Cost College"},
		},
		{
			name:    "country alias",
			filters: models.RecommendationFilters{Country: "united states"},
			want:    []string{"State University", "MIT"},
		},
		{
			name:    "within budget excludes unknown cost",
			filters: models.RecommendationFilters{WithinBudget: boolPtr(true)},
			want:    []string{"State University", "UK University"},
		},
		{
			name:    "not within budget includes unknown cost",
			filters: models.RecommendationFilters{WithinBudget: boolPtr(false)},
			want:    []string{"Unknown Cost College", "MIT"},
		},
		{
			name:    "eligibility",
			filters: models.RecommendationFilters{Eligibility: models.EligibilityConditional},
			want:    []string{"UK University"},
		},
		{
			name:    "min fit score and limit",
			filters: models.RecommendationFilters{MinFitScore: 60, Limit: 2},
			want:    []string{"State University", "UK University"},
		},
		{
			name:    "sort by name",
			filters: models.RecommendationFilters{SortBy: SortByName},
			want:    []string{"MIT", "State University", "UK University", "Unknown Cost College"},
		},
		{
			name:    "sort by acceptance rate puts unknown last",
			filters: models.RecommendationFilters{SortBy: SortByAcceptanceRate},
			want:    []string{"MIT", "UK University", "State University", "Unknown Cost College"},
		},
		{
			name:    "sort by cost puts unknown last",
			filters: models.RecommendationFilters{SortBy: SortByCost},
			want:    []string{"UK University", "State University", "MIT", "Unknown Cost College"},
		},
		{
			name:    "sort by classification",
			filters: models.RecommendationFilters{SortBy: SortByClassification},
			want:    []string{"MIT", "UK University", "Unknown Cost College", "State University"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := filterFixture()
			got := ApplyFilters(recs, tt.filters)
			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, filterFixture(), recs, "input must not be reordered")
		})
	}
}

// ==========================
// ParseFilters
// ==========================

func TestParseFilters(t *testing.T) {
	f, err := ParseFilters(map[string]interface{}{
		"classification": "match",
		"country":        " UK ",
		"withinBudget":   "true",
		"eligibility":    "Eligible",
		"minFitScore":    float64(50),
		"sort":           "Cost",
		"limit":          float64(10),
		"ignored":        "x",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClassificationTarget, f.Classification)
	assert.Equal(t, "UK", f.Country)
	require.NotNil(t, f.WithinBudget)
	assert.True(t, *f.WithinBudget)
	assert.Equal(t, models.EligibilityEligible, f.Eligibility)
	assert.Equal(t, 50, f.MinFitScore)
	assert.Equal(t, SortByCost, f.SortBy)
	assert.Equal(t, 10, f.Limit)
}

func TestParseFilters_Vocabularies(t *testing.T) {
	for raw, want := range map[string]models.Classification{
		"REACH":       models.ClassificationReach,
		"unrealistic": models.ClassificationReach,
		"Target":      models.ClassificationTarget,
		"Match":       models.ClassificationTarget,
		"safety":      models.ClassificationSafety,
	} {
		f, err := ParseFilters(map[string]interface{}{"classification": raw})
		require.NoError(t, err, raw)
		assert.Equal(t, want, f.Classification, raw)
	}
}

func TestParseFilters_Rejects(t *testing.T) {
	tests := []map[string]interface{}{
		{"classification": "dream"},
		{"classification": 3.0},
		{"within_budget": "maybe"},
		{"eligibility": "sort of"},
		{"min_fit_score": float64(101)},
		{"min_fit_score": 12.5},
		{"sort_by": "random"},
		{"limit": float64(-1)},
		{"country": []interface{}{"US"}},
	}
	for _, raw := range tests {
		_, err := ParseFilters(raw)
		assert.Error(t, err, "%v", raw)
	}
}

func TestParseFilters_Empty(t *testing.T) {
	f, err := ParseFilters(nil)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationFilters{}, f)

	f, err = ParseFilters(map[string]interface{}{"classification": "", "within_budget": nil})
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationFilters{}, f)
}

// ==========================
// Stats, config, events
// ==========================

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(filterFixture())

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Reach)
	assert.Equal(t, 2, stats.Target)
	assert.Equal(t, 1, stats.Safety)
	assert.Equal(t, 2, stats.WithinBudget)
	assert.Equal(t, 2, stats.FullyEligible)
	assert.Equal(t, 1, stats.Conditional)
	assert.Equal(t, 68.0, stats.AvgFitScore)
	assert.Equal(t, map[string]int{"US": 2, "UK": 1, "CA": 1}, stats.Countries)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.AvgFitScore)
	assert.NotNil(t, stats.Countries)
}

func TestNewEngineConfig(t *testing.T) {
	cfg := NewEngineConfig(config.RecommendationConfig{
		DefaultCurrency: "USD",
		CurrencyRates:   map[string]float64{"USD": 1, "JPY": 0.0067},
		BudgetBrackets:  config.BudgetBracketsConfig{ConstrainedMaxUSD: 20000, ModerateMaxUSD: 50000},
		Weights: config.WeightsConfig{
			MajorAlignment: 0.2, AcademicFit: 0.2, TestCompatibility: 0.2,
			CountryPreference: 0.1, CostAlignment: 0.1, AdmissionProbability: 0.2,
		},
	})

	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 0.0067, cfg.CurrencyRates["JPY"])
	assert.Equal(t, 20000.0, cfg.BudgetBrackets.ConstrainedMaxUSD)
	assert.Equal(t, 0.2, cfg.Weights.MajorAlignment)
	require.NoError(t, cfg.Validate())

	defaults := NewEngineConfig(config.RecommendationConfig{})
	assert.Equal(t, engine.DefaultWeights, defaults.Weights)
	assert.Equal(t, engine.DefaultConfig().BudgetBrackets, defaults.BudgetBrackets)
}

type fakeJSONPublisher struct {
	topic      string
	subject    string
	payload    interface{}
	attributes map[string]string
}

func (f *fakeJSONPublisher) PublishJSON(ctx context.Context, topicARN, subject string, payload interface{}, attributes map[string]string) (string, error) {
	f.topic, f.subject, f.payload, f.attributes = topicARN, subject, payload, attributes
	return "msg-1", nil
}

func TestSNSPublisher(t *testing.T) {
	client := &fakeJSONPublisher{}
	pub := NewSNSPublisher(client, "arn:aws:sns:us-east-1:123456789012:recommendations")

	err := pub.PublishGenerated(context.Background(), GeneratedEvent{RunID: "run-1", UserID: "user-1", Persisted: true})
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:recommendations", client.topic)
	assert.Equal(t, map[string]string{"event": EventRecommendationsGenerated, "userId": "user-1"}, client.attributes)
	event, ok := client.payload.(GeneratedEvent)
	require.True(t, ok)
	assert.Equal(t, EventRecommendationsGenerated, event.Event)
	assert.Equal(t, "run-1", event.RunID)
}
