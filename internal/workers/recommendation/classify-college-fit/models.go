// internal/workers/recommendation/classify-college-fit/models.go
package classifycollegefit

import "college-fit-workers/internal/models"

type Input struct {
	Profile *models.UserAcademicProfile
	College *models.CollegeRecord
}

type Output struct {
	CollegeID      int64                   `json:"collegeId"`
	Score          int                     `json:"score"`
	Category       models.Category         `json:"category"`
	Classification models.Classification   `json:"classification"`
	MatchLabel     models.MatchLabel       `json:"matchLabel"`
	Selectivity    models.SelectivityLevel `json:"selectivityLevel,omitempty"`
	SignalScores   models.SignalScores     `json:"signalScores"`
	Explanation    models.Explanation      `json:"explanation"`
	Eligibility    models.Eligibility      `json:"eligibility"`
	FinancialFit   models.FinancialFit     `json:"financialFit"`
}
