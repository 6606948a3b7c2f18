package getrecommendationstats

import (
	"time"

	"college-fit-workers/internal/models"
)

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Stats             models.RecommendationStats `json:"stats"`
	FromCache         bool                       `json:"fromCache"`
	GeneratedAt       *time.Time                 `json:"generatedAt,omitempty"`
	ProfileIncomplete bool                       `json:"profileIncomplete"`
	Message           string                     `json:"message,omitempty"`
}
