// internal/engine/config.go
package engine

import (
	"fmt"
	"math"
	"strings"
)

// BudgetBrackets are upper bounds (exclusive, USD) for the constrained and
// moderate budget levels. Anything at or above ModerateMaxUSD is comfortable.
type BudgetBrackets struct {
	ConstrainedMaxUSD float64 `mapstructure:"constrained_max_usd" json:"constrained_max_usd"`
	ModerateMaxUSD    float64 `mapstructure:"moderate_max_usd" json:"moderate_max_usd"`
}

// Config is the engine policy. Currency conversion happens in exactly one place
// (ToUSD) and all bucketing is done on USD amounts.
type Config struct {
	Weights         Weights
	DefaultCurrency string
	// CurrencyRates maps an ISO currency code to its USD value per unit.
	CurrencyRates  map[string]float64
	BudgetBrackets BudgetBrackets
}

func DefaultConfig() Config {
	return Config{
		Weights:         DefaultWeights,
		DefaultCurrency: "INR",
		CurrencyRates: map[string]float64{
			"USD": 1.0,
			"INR": 0.012,
			"EUR": 1.08,
			"GBP": 1.27,
			"CAD": 0.74,
			"AUD": 0.66,
			"SGD": 0.74,
			"NZD": 0.61,
		},
		BudgetBrackets: BudgetBrackets{
			ConstrainedMaxUSD: 30000,
			ModerateMaxUSD:    60000,
		},
	}
}

func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	b := c.BudgetBrackets
	if b.ConstrainedMaxUSD <= 0 || b.ModerateMaxUSD <= b.ConstrainedMaxUSD {
		return fmt.Errorf("budget brackets must satisfy 0 < constrained (%v) < moderate (%v)",
			b.ConstrainedMaxUSD, b.ModerateMaxUSD)
	}
	for code, rate := range c.CurrencyRates {
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return fmt.Errorf("currency rate for %s must be a positive number, got %v", code, rate)
		}
	}
	if _, ok := c.rate(c.DefaultCurrency); !ok {
		return fmt.Errorf("default currency %q has no conversion rate", c.DefaultCurrency)
	}
	return nil
}

func (c Config) rate(currency string) (float64, bool) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "USD" {
		return 1, true
	}
	r, ok := c.CurrencyRates[code]
	return r, ok
}

// ToUSD converts amount from currency. An empty currency means DefaultCurrency;
// an unknown code is treated as USD.
func (c Config) ToUSD(amount float64, currency string) float64 {
	if strings.TrimSpace(currency) == "" {
		currency = c.DefaultCurrency
	}
	r, ok := c.rate(currency)
	if !ok {
		return amount
	}
	return amount * r
}
