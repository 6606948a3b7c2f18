// internal/engine/scorer.go
package engine

import (
	"math"
	"strings"

	"college-fit-workers/internal/models"
)

const neutral = 0.5

// Major alignment levels.
const (
	majorPrimary   = 1.0
	majorSecondary = 0.8
	majorRelated   = 0.6
	majorNone      = 0.2
)

// fallbackAvgGPA stands in for a college's average GPA when the catalog has none.
var fallbackAvgGPA = map[models.SelectivityLevel]float64{
	models.SelectivityHighly:     3.9,
	models.SelectivityModerately: 3.6,
	models.SelectivityLess:       3.2,
	models.SelectivityUnknown:    3.5,
}

var strengthAdjustment = map[AcademicStrength]float64{
	StrengthExceptional: 1.2,
	StrengthStrong:      0.6,
	StrengthModerate:    0,
	StrengthWeak:        -0.8,
}

// CalculateSignalScores returns the six dimension scores, each in [0,1].
func CalculateSignalScores(s *NormalizedSignals, f *NormalizedCollegeFeatures) models.SignalScores {
	academic := academicFit(s, f)
	return models.SignalScores{
		Major:     majorAlignment(s, f),
		Academic:  academic,
		Test:      testCompatibility(s, f),
		Country:   countryPreference(s, f),
		Cost:      costAlignment(s, f),
		Admission: admissionProbability(s, f, academic),
	}
}

// academicFit is a logistic curve over the gap between the student's 4.0-basis
// GPA and the college average, so small gaps move the score smoothly.
func academicFit(s *NormalizedSignals, f *NormalizedCollegeFeatures) float64 {
	if s.InsufficientAcademicData {
		return neutral
	}
	avg := fallbackAvgGPA[f.SelectivityLevel]
	if f.Requirements.AvgGPA != nil {
		avg = *f.Requirements.AvgGPA
	}
	return sigmoid(4 * (s.GPA4 - avg))
}

type programMatch struct {
	score   float64
	program string
}

func bestProgramMatch(intent MajorIntent, programs []string) programMatch {
	if !intent.HasIntent || len(programs) == 0 {
		return programMatch{score: neutral}
	}
	best := programMatch{score: majorNone}
	for i, major := range intent.All {
		want := foldText(major)
		if want == "" {
			continue
		}
		wantTokens := significantTokens(want)
		for _, program := range programs {
			have := foldText(program)
			haveTokens := significantTokens(have)
			if len(haveTokens) == 0 {
				continue
			}
			var score float64
			switch {
			case have == want || containsPhrase(have, want) || containsPhrase(want, have):
				if i == 0 {
					score = majorPrimary
				} else {
					score = majorSecondary
				}
			case sharesToken(wantTokens, haveTokens):
				score = majorRelated
			default:
				continue
			}
			if score > best.score {
				best = programMatch{score: score, program: program}
			}
		}
	}
	return best
}

// containsPhrase matches whole words only: "art" does not match "martial studies".
func containsPhrase(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}

func sharesToken(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if set[t] {
			return true
		}
	}
	return false
}

func majorAlignment(s *NormalizedSignals, f *NormalizedCollegeFeatures) float64 {
	return bestProgramMatch(s.MajorIntent, f.Programs).score
}

// rangeFit scores a test score against a published band. The midpoint of the
// band maps to about 0.73 and the bottom of the band to 0.18.
func rangeFit(score float64, r ScoreRange) float64 {
	if !r.Known || r.Half() <= 0 {
		return neutral
	}
	t := (score - r.Mid()) / r.Half()
	return sigmoid(2.5*t + 1)
}

func testCompatibility(s *NormalizedSignals, f *NormalizedCollegeFeatures) float64 {
	req := f.Requirements
	if !s.TestStatus.HasStandardizedTest {
		switch {
		case req.TestOptional:
			return 0.6
		case req.RequiresStandardizedTest():
			return 0.25
		default:
			return neutral
		}
	}

	best := -1.0
	if sat, ok := s.TestStatus.Score("SAT"); ok && req.SATRange.Known {
		best = math.Max(best, rangeFit(sat, req.SATRange))
	}
	if act, ok := s.TestStatus.Score("ACT"); ok && req.ACTRange.Known {
		best = math.Max(best, rangeFit(act, req.ACTRange))
	}
	if best < 0 {
		return neutral
	}
	if req.TestOptional {
		best = math.Max(best, neutral)
	}
	return best
}

func countryPreference(s *NormalizedSignals, f *NormalizedCollegeFeatures) float64 {
	if !s.HasCountryPreferences() || f.Country == "" {
		return neutral
	}
	if s.CountryPreferences[f.Country] {
		return 1.0
	}
	return 0.15
}

// costAlignment is a logistic curve over budget/cost, centred on budget == cost.
func costAlignment(s *NormalizedSignals, f *NormalizedCollegeFeatures) float64 {
	b := s.BudgetSensitivity
	if !b.HasBudget || !f.HasCost || f.EstimatedCostUSD <= 0 {
		return neutral
	}
	ratio := b.MaxBudgetUSD / f.EstimatedCostUSD

	// aid and loans shift the curve; the score stays continuous and rises with budget
	shift := 0.0
	if f.FinancialAid && b.NeedsAid {
		shift += aidShift
	}
	if b.LoanWilling {
		shift += loanShift
	}
	return clamp(sigmoid(4*(ratio-1)+shift), 0, 1)
}

const (
	aidShift  = 0.4
	loanShift = 0.2
)

// selectivityDamping is applied to the acceptance rate before the strength adjustment.
func selectivityDamping(rate float64) float64 {
	switch {
	case rate < 0.10:
		return 0.6
	case rate < 0.20:
		return 0.75
	case rate < 0.30:
		return 0.85
	default:
		return 1
	}
}

func admissionProbability(s *NormalizedSignals, f *NormalizedCollegeFeatures, academic float64) float64 {
	if !f.HasAcceptanceRate {
		return neutral
	}
	base := clamp(f.AcceptanceRate*selectivityDamping(f.AcceptanceRate), 0.01, 0.99)
	adj := 0.0
	if !s.InsufficientAcademicData {
		adj = strengthAdjustment[s.AcademicStrengthLevel]
	}
	return sigmoid(logit(base) + adj + (academic-neutral)*2)
}
