package generatecollegerecommendations

import "college-fit-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"userId": {"type": "string", "minLength": 1, "maxLength": 128}
	},
	"required": ["userId"]
}`)
