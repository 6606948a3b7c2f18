package getcollegerecommendations

import "college-fit-workers/internal/common/validation"

// filter values are checked by recommendation.ParseFilters
var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"userId": {"type": "string", "minLength": 1, "maxLength": 128},
		"filters": {"type": ["object", "null"]}
	},
	"required": ["userId"]
}`)
