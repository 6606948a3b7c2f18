// internal/engine/engine.go
package engine

import (
	"errors"
	"fmt"
	"sort"

	"college-fit-workers/internal/models"
)

var (
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrEmptyCatalog      = errors.New("no colleges to consider")
)

// Engine scores and classifies colleges for one student at a time. It holds no
// per-user state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

func New(cfg Config) (*Engine, error) {
	if cfg.Weights.IsZero() {
		cfg.Weights = DefaultWeights
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Generate scores every college against the profile and returns the list
// ordered by fit score (descending), then name, then id.
func (e *Engine) Generate(profile *models.UserAcademicProfile, colleges []models.CollegeRecord) ([]models.Recommendation, error) {
	if !profile.IsComplete() {
		return nil, ErrProfileIncomplete
	}
	if len(colleges) == 0 {
		return nil, ErrEmptyCatalog
	}

	signals := DeriveUserSignals(profile, e.cfg)
	out := make([]models.Recommendation, 0, len(colleges))
	for i := range colleges {
		rec, err := e.evaluate(&signals, &colleges[i])
		if err != nil {
			return nil, fmt.Errorf("college %d: %w", colleges[i].ID, err)
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FitScore != out[j].FitScore {
			return out[i].FitScore > out[j].FitScore
		}
		if out[i].CollegeName != out[j].CollegeName {
			return out[i].CollegeName < out[j].CollegeName
		}
		return out[i].CollegeID < out[j].CollegeID
	})
	return out, nil
}

// PairResult carries both classification vocabularies for one pair.
type PairResult struct {
	Recommendation models.Recommendation
	MatchLabel     models.MatchLabel
}

// EvaluatePair scores a single (profile, college) pair.
func (e *Engine) EvaluatePair(profile *models.UserAcademicProfile, college *models.CollegeRecord) (*PairResult, error) {
	if !profile.IsComplete() {
		return nil, ErrProfileIncomplete
	}
	if college == nil {
		return nil, ErrEmptyCatalog
	}
	signals := DeriveUserSignals(profile, e.cfg)
	rec, err := e.evaluate(&signals, college)
	if err != nil {
		return nil, err
	}
	label, err := ClassifyCollege(float64(rec.FitScore)/100, rec.SelectivityLevel, college)
	if err != nil {
		return nil, err
	}
	return &PairResult{Recommendation: rec, MatchLabel: label}, nil
}

func (e *Engine) evaluate(s *NormalizedSignals, college *models.CollegeRecord) (models.Recommendation, error) {
	f := NormalizeCollegeFeatures(college, e.cfg)
	scores := CalculateSignalScores(s, &f)

	overall, err := e.cfg.Weights.Combine(scores)
	if err != nil {
		return models.Recommendation{}, err
	}
	category, err := DetermineCategory(float64(overall), scores.Academic*100)
	if err != nil {
		return models.Recommendation{}, err
	}
	category = applySelectivityFloor(category, &f)

	rec := models.Recommendation{
		CollegeID:        college.ID,
		CollegeName:      college.Name,
		Country:          college.Country,
		Location:         college.Location,
		SelectivityLevel: f.SelectivityLevel,
		Classification:   ToClassification(category),
		Category:         category,
		FitScore:         overall,
		SignalScores:     scores,
		Explanation:      GenerateExplanation(college.Name, s, &f, scores, category),
		Eligibility:      AssessEligibility(s, &f),
		FinancialFit:     AssessFinancialFit(s, &f),
	}
	if f.HasAcceptanceRate {
		rate := f.AcceptanceRate
		rec.AcceptanceRate = &rate
	}
	return rec, nil
}
