package getcollegerecommendation

import "college-fit-workers/internal/models"

type Input struct {
	UserID    string `json:"userId"`
	CollegeID int64  `json:"collegeId"`
}

type Output struct {
	Recommendation *models.Recommendation `json:"recommendation"`
	Found          bool                   `json:"found"`
}
