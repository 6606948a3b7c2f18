// internal/models/college.go
package models

import (
	"encoding/json"
	"fmt"
)

// CollegeRecord is one catalog entry as stored. Structured fields stay raw until
// the engine normalizes them.
type CollegeRecord struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Country               string   `json:"country"`
	Location              string   `json:"location,omitempty"`
	AcceptanceRate        *float64 `json:"acceptance_rate,omitempty"`
	Programs              RawJSON  `json:"programs,omitempty"`
	Requirements          RawJSON  `json:"requirements,omitempty"`
	ResearchData          RawJSON  `json:"research_data,omitempty"`
	CostData              RawJSON  `json:"cost_data,omitempty"`
	TrustTier             string   `json:"trust_tier,omitempty"`
	FinancialAidAvailable bool     `json:"financial_aid_available"`
}

// CollegeFromMap decodes an inline college record, accepting camelCase keys.
func CollegeFromMap(raw map[string]interface{}) (*CollegeRecord, error) {
	canonical, err := json.Marshal(NormalizeCollegeKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("encode canonical college: %w", err)
	}
	var c CollegeRecord
	if err := json.Unmarshal(canonical, &c); err != nil {
		return nil, fmt.Errorf("decode canonical college: %w", err)
	}
	return &c, nil
}
