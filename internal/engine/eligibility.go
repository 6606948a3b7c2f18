// internal/engine/eligibility.go
package engine

import (
	"fmt"
	"math"

	"college-fit-workers/internal/models"
)

// AssessEligibility checks hard requirements. An unmet minimum makes the student
// not eligible; a missing exam or grade leaves them conditionally eligible.
func AssessEligibility(s *NormalizedSignals, f *NormalizedCollegeFeatures) models.Eligibility {
	e := models.Eligibility{Status: models.EligibilityEligible}
	req := f.Requirements

	if req.MinPercentage != nil {
		switch {
		case !s.HasPercentage:
			e.Conditions = append(e.Conditions,
				fmt.Sprintf("Minimum percentage of %.0f%% (not reported)", *req.MinPercentage))
		case s.Percentage < *req.MinPercentage:
			e.Unmet = append(e.Unmet,
				fmt.Sprintf("Minimum percentage of %.0f%% (you have %.1f%%)", *req.MinPercentage, s.Percentage))
		}
	}

	for _, exam := range req.RequiredExams {
		if req.TestOptional && isStandardizedExam(exam) {
			continue
		}
		score, ok := examScore(s, exam)
		minimum, hasMin := req.ExamMinimums[exam]
		switch {
		case ok && hasMin && score < minimum:
			e.Unmet = append(e.Unmet, fmt.Sprintf("%s minimum of %s (you have %s)", exam, trimFloat(minimum), trimFloat(score)))
		case ok:
		case s.TestStatus.Planned[exam]:
			e.Conditions = append(e.Conditions, requirementText(exam, minimum, hasMin)+" (planned)")
		default:
			e.Conditions = append(e.Conditions, requirementText(exam, minimum, hasMin))
		}
	}

	switch {
	case len(e.Unmet) > 0:
		e.Status = models.EligibilityNotEligible
	case len(e.Conditions) > 0:
		e.Status = models.EligibilityConditional
	}
	return e
}

func isStandardizedExam(exam string) bool {
	return exam == "SAT" || exam == "ACT" || exam == "SAT/ACT"
}

// examScore resolves "SAT/ACT" to whichever of the two the student has.
func examScore(s *NormalizedSignals, exam string) (float64, bool) {
	if exam == "SAT/ACT" {
		if v, ok := s.TestStatus.Score("SAT"); ok {
			return v, true
		}
		return s.TestStatus.Score("ACT")
	}
	return s.TestStatus.Score(exam)
}

func requirementText(exam string, minimum float64, hasMin bool) string {
	if hasMin {
		return fmt.Sprintf("%s score of at least %s required", exam, trimFloat(minimum))
	}
	return fmt.Sprintf("%s score required", exam)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// AssessFinancialFit compares the USD budget against the estimated USD cost.
// Known is false when either side is missing.
func AssessFinancialFit(s *NormalizedSignals, f *NormalizedCollegeFeatures) models.FinancialFit {
	fit := models.FinancialFit{AidAvailable: f.FinancialAid}
	if f.HasCost {
		fit.EstimatedCostUSD = math.Round(f.EstimatedCostUSD)
	}
	if s.BudgetSensitivity.HasBudget {
		fit.BudgetUSD = math.Round(s.BudgetSensitivity.MaxBudgetUSD)
	}
	if !f.HasCost || !s.BudgetSensitivity.HasBudget {
		return fit
	}
	fit.Known = true
	fit.WithinBudget = fit.BudgetUSD >= fit.EstimatedCostUSD
	if !fit.WithinBudget {
		fit.GapUSD = fit.EstimatedCostUSD - fit.BudgetUSD
	}
	return fit
}
