package classifycollegefit

import "college-fit-workers/internal/common/validation"

// profile completeness is decided by the engine, not the schema
var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"profile": {"type": "object"},
		"college": {
			"type": "object",
			"anyOf": [
				{"required": ["name"]},
				{"required": ["collegeName"]},
				{"required": ["college_name"]}
			]
		}
	},
	"required": ["profile", "college"]
}`)
