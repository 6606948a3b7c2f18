// internal/workers/recommendation/generate-college-recommendations/models.go
package generatecollegerecommendations

import (
	"time"

	"college-fit-workers/internal/models"
)

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	RunID       string                     `json:"runId"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Stats       models.RecommendationStats `json:"stats"`
	Persisted   bool                       `json:"persisted"`
}
