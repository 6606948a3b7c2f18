// internal/models/recommendation.go
package models

import "time"

// Classification is the three-way label persisted in the cache.
type Classification string

const (
	ClassificationReach  Classification = "REACH"
	ClassificationTarget Classification = "TARGET"
	ClassificationSafety Classification = "SAFETY"
)

// Category is the canonical four-way fit taxonomy.
type Category string

const (
	CategorySafety      Category = "safety"
	CategoryTarget      Category = "target"
	CategoryReach       Category = "reach"
	CategoryUnrealistic Category = "unrealistic"
)

// MatchLabel is the per-pair classifier output.
type MatchLabel string

const (
	MatchReach  MatchLabel = "Reach"
	MatchMatch  MatchLabel = "Match"
	MatchSafety MatchLabel = "Safety"
)

type SelectivityLevel string

const (
	SelectivityHighly     SelectivityLevel = "highly_selective"
	SelectivityModerately SelectivityLevel = "moderately_selective"
	SelectivityLess       SelectivityLevel = "less_selective"
	SelectivityUnknown    SelectivityLevel = ""
)

type EligibilityStatus string

const (
	EligibilityEligible    EligibilityStatus = "eligible"
	EligibilityConditional EligibilityStatus = "conditional"
	EligibilityNotEligible EligibilityStatus = "not_eligible"
)

// SignalScores are the six per-dimension sub-scores, each in [0,1].
type SignalScores struct {
	Major     float64 `json:"major"`
	Academic  float64 `json:"academic"`
	Test      float64 `json:"test"`
	Country   float64 `json:"country"`
	Cost      float64 `json:"cost"`
	Admission float64 `json:"admission"`
}

type Explanation struct {
	Summary       string   `json:"summary"`
	Reasons       []string `json:"reasons"`
	Concerns      []string `json:"concerns"`
	PrimaryReason string   `json:"primary_reason"`
}

type Eligibility struct {
	Status     EligibilityStatus `json:"status"`
	Unmet      []string          `json:"unmet,omitempty"`
	Conditions []string          `json:"conditions,omitempty"`
}

type FinancialFit struct {
	Known            bool    `json:"known"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd,omitempty"`
	BudgetUSD        float64 `json:"budget_usd,omitempty"`
	WithinBudget     bool    `json:"within_budget"`
	GapUSD           float64 `json:"gap_usd,omitempty"`
	AidAvailable     bool    `json:"aid_available"`
}

// Recommendation is one classified college for one student.
type Recommendation struct {
	CollegeID        int64            `json:"college_id"`
	CollegeName      string           `json:"college_name"`
	Country          string           `json:"country"`
	Location         string           `json:"location,omitempty"`
	AcceptanceRate   *float64         `json:"acceptance_rate,omitempty"`
	SelectivityLevel SelectivityLevel `json:"selectivity_level,omitempty"`
	Classification   Classification   `json:"classification"`
	Category         Category         `json:"category"`
	FitScore         int              `json:"fit_score"`
	SignalScores     SignalScores     `json:"signal_scores"`
	Explanation      Explanation      `json:"explanation"`
	Eligibility      Eligibility      `json:"eligibility"`
	FinancialFit     FinancialFit     `json:"financial_fit"`
}

// RecommendationStats are aggregated over the unfiltered list.
type RecommendationStats struct {
	Total         int            `json:"total"`
	Reach         int            `json:"reach"`
	Target        int            `json:"target"`
	Safety        int            `json:"safety"`
	WithinBudget  int            `json:"within_budget"`
	FullyEligible int            `json:"fully_eligible"`
	Conditional   int            `json:"conditional"`
	AvgFitScore   float64        `json:"avg_fit_score"`
	Countries     map[string]int `json:"countries"`
}

// RecommendationFilters narrow a cached list at read time.
type RecommendationFilters struct {
	Classification Classification    `json:"classification,omitempty"`
	Country        string            `json:"country,omitempty"`
	WithinBudget   *bool             `json:"within_budget,omitempty"`
	Eligibility    EligibilityStatus `json:"eligibility,omitempty"`
	MinFitScore    int               `json:"min_fit_score,omitempty"`
	SortBy         string            `json:"sort_by,omitempty"`
	Limit          int               `json:"limit,omitempty"`
}

// CacheEntry is the single cached list per user.
type CacheEntry struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
