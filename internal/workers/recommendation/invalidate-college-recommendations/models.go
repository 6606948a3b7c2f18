package invalidatecollegerecommendations

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Invalidated bool `json:"invalidated"`
}
