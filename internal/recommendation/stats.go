// internal/recommendation/stats.go
package recommendation

import (
	"math"

	"college-fit-workers/internal/models"
)

// ComputeStats reduces a full (unfiltered) list. Countries are keyed by
// canonical country code.
func ComputeStats(recs []models.Recommendation) models.RecommendationStats {
	stats := models.RecommendationStats{
		Total:     len(recs),
		Countries: make(map[string]int),
	}
	if len(recs) == 0 {
		return stats
	}

	total := 0
	for _, r := range recs {
		switch r.Classification {
		case models.ClassificationReach:
			stats.Reach++
		case models.ClassificationTarget:
			stats.Target++
		case models.ClassificationSafety:
			stats.Safety++
		}
		if r.FinancialFit.Known && r.FinancialFit.WithinBudget {
			stats.WithinBudget++
		}
		switch r.Eligibility.Status {
		case models.EligibilityEligible:
			stats.FullyEligible++
		case models.EligibilityConditional:
			stats.Conditional++
		}
		country := models.CanonicalCountry(r.Country)
		if country == "" {
			country = "unknown"
		}
		stats.Countries[country]++
		total += r.FitScore
	}

	stats.AvgFitScore = math.Round(float64(total)/float64(len(recs))*10) / 10
	return stats
}
