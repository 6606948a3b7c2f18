// internal/workers/recommendation/get-college-recommendations/models.go
package getcollegerecommendations

import (
	"time"

	"college-fit-workers/internal/models"
)

type Input struct {
	UserID  string                 `json:"userId"`
	Filters map[string]interface{} `json:"filters,omitempty"`

	parsed models.RecommendationFilters
}

type Output struct {
	Recommendations   []models.Recommendation    `json:"recommendations"`
	Count             int                        `json:"count"`
	Stats             models.RecommendationStats `json:"stats"`
	FromCache         bool                       `json:"fromCache"`
	GeneratedAt       *time.Time                 `json:"generatedAt,omitempty"`
	ProfileIncomplete bool                       `json:"profileIncomplete"`
	Message           string                     `json:"message,omitempty"`
}
