// internal/engine/explanation.go
package engine

import (
	"fmt"
	"sort"
	"strings"

	"college-fit-workers/internal/models"
)

type dimension int

const (
	dimMajor dimension = iota
	dimAcademic
	dimTest
	dimCountry
	dimCost
	dimAdmission
)

// thresholds are per dimension: score >= reason adds a reason, score < concern
// adds a concern.
var thresholds = map[dimension]struct{ reason, concern float64 }{
	dimMajor:     {reason: 0.9, concern: 0.3},
	dimAcademic:  {reason: 0.75, concern: 0.35},
	dimTest:      {reason: 0.75, concern: 0.3},
	dimCountry:   {reason: 0.9, concern: 0.3},
	dimCost:      {reason: 0.7, concern: 0.35},
	dimAdmission: {reason: 0.6, concern: 0.15},
}

var satPercentiles = []struct{ score, pct int }{
	{1600, 99}, {1550, 99}, {1500, 98}, {1450, 96}, {1400, 94}, {1350, 91}, {1300, 87},
	{1250, 82}, {1200, 74}, {1150, 66}, {1100, 57}, {1050, 47}, {1000, 38}, {950, 29}, {900, 22},
}

var actPercentiles = []struct{ score, pct int }{
	{36, 99}, {35, 99}, {34, 99}, {33, 98}, {32, 97}, {31, 96}, {30, 94}, {29, 92}, {28, 89},
	{27, 86}, {26, 82}, {25, 78}, {24, 73}, {23, 68}, {22, 62}, {21, 56}, {20, 50}, {19, 44},
}

const belowTablePercentile = 10

// SATPercentile returns the national percentile for a SAT total.
func SATPercentile(score float64) int {
	for _, row := range satPercentiles {
		if score >= float64(row.score) {
			return row.pct
		}
	}
	return belowTablePercentile
}

// ACTPercentile returns the national percentile for an ACT composite.
func ACTPercentile(score float64) int {
	for _, row := range actPercentiles {
		if score >= float64(row.score) {
			return row.pct
		}
	}
	return belowTablePercentile
}

type scoredLine struct {
	dim   dimension
	score float64
	text  string
}

// GenerateExplanation is deterministic for identical inputs.
func GenerateExplanation(name string, s *NormalizedSignals, f *NormalizedCollegeFeatures, scores models.SignalScores, category models.Category) models.Explanation {
	var reasons, concerns []scoredLine
	add := func(d dimension, score float64, reason, concern func() string) {
		t := thresholds[d]
		switch {
		case score >= t.reason && reason != nil:
			if text := reason(); text != "" {
				reasons = append(reasons, scoredLine{dim: d, score: score, text: text})
			}
		case score < t.concern && concern != nil:
			if text := concern(); text != "" {
				concerns = append(concerns, scoredLine{dim: d, score: score, text: text})
			}
		}
	}

	match := bestProgramMatch(s.MajorIntent, f.Programs)
	add(dimMajor, scores.Major,
		func() string {
			if match.program == "" {
				return ""
			}
			return fmt.Sprintf("Offers %s, matching your intended major", match.program)
		},
		func() string {
			return fmt.Sprintf("No listed program matches your intended major (%s)", s.MajorIntent.Primary)
		})

	add(dimAcademic, scores.Academic,
		func() string { return "Your academic record is above this college's typical admitted student" },
		func() string { return "Your grades are below this college's typical admitted student" })

	add(dimTest, scores.Test,
		func() string { return testReason(s) },
		func() string {
			if !s.TestStatus.HasStandardizedTest {
				return "Requires SAT or ACT scores you have not reported"
			}
			return "Your test scores fall below the typical admitted range"
		})

	add(dimCountry, scores.Country,
		func() string { return fmt.Sprintf("Located in %s, one of your preferred countries", f.Country) },
		func() string { return fmt.Sprintf("Located in %s, outside your preferred countries", f.Country) })

	add(dimCost, scores.Cost,
		func() string {
			return fmt.Sprintf("Estimated annual cost of %s fits your budget of %s",
				formatUSD(f.EstimatedCostUSD), formatUSD(s.BudgetSensitivity.MaxBudgetUSD))
		},
		func() string {
			return fmt.Sprintf("Estimated annual cost of %s exceeds your budget of %s",
				formatUSD(f.EstimatedCostUSD), formatUSD(s.BudgetSensitivity.MaxBudgetUSD))
		})

	add(dimAdmission, scores.Admission,
		func() string { return "Your admission chances here are good" },
		func() string {
			return fmt.Sprintf("Highly competitive admissions (%.0f%% acceptance rate)", f.AcceptanceRate*100)
		})

	if f.ResearchIntensive {
		reasons = append(reasons, scoredLine{dim: -1, text: "Research-intensive institution"})
	}
	if f.FinancialAid && s.BudgetSensitivity.NeedsAid {
		reasons = append(reasons, scoredLine{dim: -1, text: "Offers financial aid to international students"})
	}

	summary := summaryFor(name, category)
	return models.Explanation{
		Summary:       summary,
		Reasons:       texts(reasons),
		Concerns:      texts(concerns),
		PrimaryReason: primaryReason(reasons, summary),
	}
}

func testReason(s *NormalizedSignals) string {
	if sat, ok := s.TestStatus.Score("SAT"); ok {
		return fmt.Sprintf("Your SAT score of %.0f (about the %s percentile) is in the upper part of the admitted range",
			sat, ordinal(SATPercentile(sat)))
	}
	if act, ok := s.TestStatus.Score("ACT"); ok {
		return fmt.Sprintf("Your ACT score of %.0f (about the %s percentile) is in the upper part of the admitted range",
			act, ordinal(ACTPercentile(act)))
	}
	return ""
}

func summaryFor(name string, c models.Category) string {
	switch c {
	case models.CategorySafety:
		return fmt.Sprintf("%s is a likely admit and a strong fit for your profile.", name)
	case models.CategoryTarget:
		return fmt.Sprintf("%s is a realistic target that fits your profile well.", name)
	case models.CategoryReach:
		return fmt.Sprintf("%s is a reach: admission is competitive for your profile.", name)
	default:
		return fmt.Sprintf("%s is unlikely to admit your current profile.", name)
	}
}

// primaryReason is the reason from the highest-scoring dimension. Ties go to
// the earlier dimension in declaration order.
func primaryReason(reasons []scoredLine, summary string) string {
	var scored []scoredLine
	for _, r := range reasons {
		if r.dim >= 0 {
			scored = append(scored, r)
		}
	}
	if len(scored) == 0 {
		return summary
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].dim < scored[j].dim
	})
	return scored[0].text
}

func texts(lines []scoredLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.TrimSpace(l.text))
	}
	return out
}
