// internal/recommendation/filters.go
package recommendation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"college-fit-workers/internal/engine"
	"college-fit-workers/internal/models"
)

const (
	SortByFitScore       = "fit_score"
	SortByName           = "name"
	SortByAcceptanceRate = "acceptance_rate"
	SortByCost           = "cost"
	SortByClassification = "classification"
)

var filterKeyAliases = map[string]string{
	"withinBudget": "within_budget",
	"minFitScore":  "min_fit_score",
	"min_score":    "min_fit_score",
	"sort":         "sort_by",
	"sortBy":       "sort_by",
}

// ParseFilters reads filters from job variables. Unknown keys are ignored;
// values of the wrong shape are rejected.
func ParseFilters(raw map[string]interface{}) (models.RecommendationFilters, error) {
	var f models.RecommendationFilters
	for k, v := range models.NormalizeKeys(raw, filterKeyAliases) {
		if v == nil {
			continue
		}
		switch k {
		case "classification":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("classification must be a string")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			c, ok := engine.ParseClassification(s)
			if !ok {
				return f, fmt.Errorf("unknown classification %q", s)
			}
			f.Classification = c
		case "country":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("country must be a string")
			}
			f.Country = strings.TrimSpace(s)
		case "within_budget":
			b, err := parseBool(v)
			if err != nil {
				return f, fmt.Errorf("within_budget: %w", err)
			}
			f.WithinBudget = &b
		case "eligibility":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("eligibility must be a string")
			}
			status := models.EligibilityStatus(strings.ToLower(strings.TrimSpace(s)))
			switch status {
			case "":
			case models.EligibilityEligible, models.EligibilityConditional, models.EligibilityNotEligible:
				f.Eligibility = status
			default:
				return f, fmt.Errorf("unknown eligibility %q", s)
			}
		case "min_fit_score":
			n, err := parseInt(v)
			if err != nil || n < 0 || n > 100 {
				return f, fmt.Errorf("min_fit_score must be an integer in [0,100]")
			}
			f.MinFitScore = n
		case "sort_by":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("sort must be a string")
			}
			s = strings.ToLower(strings.TrimSpace(s))
			switch s {
			case "", SortByFitScore, SortByName, SortByAcceptanceRate, SortByCost, SortByClassification:
				f.SortBy = s
			default:
				return f, fmt.Errorf("unknown sort %q", s)
			}
		case "limit":
			n, err := parseInt(v)
			if err != nil || n < 0 {
				return f, fmt.Errorf("limit must be a non-negative integer")
			}
			f.Limit = n
		}
	}
	return f, nil
}

func parseBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

func parseInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

// ApplyFilters narrows and orders an already generated list. It never scores
// anything and never modifies recs.
func ApplyFilters(recs []models.Recommendation, f models.RecommendationFilters) []models.Recommendation {
	country := ""
	if f.Country != "" {
		country = models.CanonicalCountry(f.Country)
	}

	out := make([]models.Recommendation, 0, len(recs))
	for _, r := range recs {
		if f.Classification != "" && r.Classification != f.Classification {
			continue
		}
		if country != "" && models.CanonicalCountry(r.Country) != country {
			continue
		}
		if f.WithinBudget != nil {
			// an unknown cost never counts as within budget
			within := r.FinancialFit.Known && r.FinancialFit.WithinBudget
			if within != *f.WithinBudget {
				continue
			}
		}
		if f.Eligibility != "" && r.Eligibility.Status != f.Eligibility {
			continue
		}
		if r.FitScore < f.MinFitScore {
			continue
		}
		out = append(out, r)
	}

	sortRecommendations(out, f.SortBy)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

var classificationRank = map[models.Classification]int{
	models.ClassificationReach:  0,
	models.ClassificationTarget: 1,
	models.ClassificationSafety: 2,
}

func sortRecommendations(recs []models.Recommendation, by string) {
	byScore := func(a, b models.Recommendation) bool {
		if a.FitScore != b.FitScore {
			return a.FitScore > b.FitScore
		}
		if a.CollegeName != b.CollegeName {
			return a.CollegeName < b.CollegeName
		}
		return a.CollegeID < b.CollegeID
	}

	var less func(a, b models.Recommendation) bool
	switch by {
	case SortByName:
		less = func(a, b models.Recommendation) bool {
			if a.CollegeName != b.CollegeName {
				return a.CollegeName < b.CollegeName
			}
			return a.CollegeID < b.CollegeID
		}
	case SortByAcceptanceRate:
		// most selective first, unknown rates last
		less = func(a, b models.Recommendation) bool {
			switch {
			case a.AcceptanceRate == nil && b.AcceptanceRate == nil:
				return byScore(a, b)
			case a.AcceptanceRate == nil:
				return false
			case b.AcceptanceRate == nil:
				return true
			case *a.AcceptanceRate != *b.AcceptanceRate:
				return *a.AcceptanceRate < *b.AcceptanceRate
			}
			return byScore(a, b)
		}
	case SortByCost:
		// cheapest first, unknown costs last
		less = func(a, b models.Recommendation) bool {
			ak, bk := a.FinancialFit.Known, b.FinancialFit.Known
			switch {
			case !ak && !bk:
				return byScore(a, b)
			case !ak:
				return false
			case !bk:
				return true
			case a.FinancialFit.EstimatedCostUSD != b.FinancialFit.EstimatedCostUSD:
				return a.FinancialFit.EstimatedCostUSD < b.FinancialFit.EstimatedCostUSD
			}
			return byScore(a, b)
		}
	case SortByClassification:
		less = func(a, b models.Recommendation) bool {
			ra, rb := classificationRank[a.Classification], classificationRank[b.Classification]
			if ra != rb {
				return ra < rb
			}
			return byScore(a, b)
		}
	default:
		less = byScore
	}

	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
}
