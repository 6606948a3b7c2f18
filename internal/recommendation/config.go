// internal/recommendation/config.go
package recommendation

import (
	"college-fit-workers/internal/common/config"
	"college-fit-workers/internal/engine"
)

// NewEngineConfig builds the engine policy from the recommendation config
// section, starting from the engine defaults.
func NewEngineConfig(rc config.RecommendationConfig) engine.Config {
	cfg := engine.DefaultConfig()

	if rc.DefaultCurrency != "" {
		cfg.DefaultCurrency = rc.DefaultCurrency
	}
	if len(rc.CurrencyRates) > 0 {
		rates := make(map[string]float64, len(rc.CurrencyRates))
		for code, rate := range rc.CurrencyRates {
			rates[code] = rate
		}
		cfg.CurrencyRates = rates
	}
	if rc.BudgetBrackets.ConstrainedMaxUSD > 0 {
		cfg.BudgetBrackets.ConstrainedMaxUSD = rc.BudgetBrackets.ConstrainedMaxUSD
	}
	if rc.BudgetBrackets.ModerateMaxUSD > 0 {
		cfg.BudgetBrackets.ModerateMaxUSD = rc.BudgetBrackets.ModerateMaxUSD
	}
	if !rc.Weights.IsZero() {
		w := rc.Weights
		cfg.Weights = engine.Weights{
			MajorAlignment:       w.MajorAlignment,
			AcademicFit:          w.AcademicFit,
			TestCompatibility:    w.TestCompatibility,
			CountryPreference:    w.CountryPreference,
			CostAlignment:        w.CostAlignment,
			AdmissionProbability: w.AdmissionProbability,
		}
	}
	return cfg
}
