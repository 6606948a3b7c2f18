package validation

import (
	"strings"

	"college-fit-workers/internal/common/errors"
)

// ValidateJobInput checks raw job variables against s. The returned error
// lists every failing field and is never retryable.
func ValidateJobInput(s *Schema, variables string) *errors.StandardError {
	res := s.Validate(variables)
	if res.Valid {
		return nil
	}

	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	return errors.NewInvalidInputError(res.Error()).
		WithMetadata("invalidFields", strings.Join(fields, ","))
}
