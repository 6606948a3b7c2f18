// internal/engine/classifier.go
package engine

import (
	"errors"
	"fmt"
	"math"

	"college-fit-workers/internal/models"
)

var ErrInvalidScore = errors.New("invalid score")

// Four-way category boundaries on the 0-100 scale.
const (
	safetyFrom = 80
	targetFrom = 55
	reachFrom  = 30
)

// Three-way boundaries on the 0-1 fraction scale.
const (
	matchSafetyFrom = 0.80
	matchMatchFrom  = 0.55
	// below this acceptance rate a college is never labelled Safety
	nearEliteBelow = 0.15
)

// academicBlend is how far DetermineCategory pulls the overall score toward a
// lower academic sub-score before the boundary table is applied.
const academicBlend = 0.85

// ScoreToCategory applies the four-way boundary table. Scores outside [0,100]
// or non-finite are rejected.
func ScoreToCategory(score float64) (models.Category, error) {
	if !isFinite(score) || score < 0 || score > 100 {
		return "", fmt.Errorf("%w: %v is not a score in [0,100]", ErrInvalidScore, score)
	}
	switch {
	case score >= safetyFrom:
		return models.CategorySafety, nil
	case score >= targetFrom:
		return models.CategoryTarget, nil
	case score >= reachFrom:
		return models.CategoryReach, nil
	default:
		return models.CategoryUnrealistic, nil
	}
}

// DetermineCategory re-blends the overall score with the academic sub-score
// (both 0-100) and maps the result through ScoreToCategory. An academic score
// below the overall score drags the effective score down; a higher one never
// lifts it.
func DetermineCategory(overall, academic float64) (models.Category, error) {
	if !isFinite(overall) || !isFinite(academic) {
		return "", fmt.Errorf("%w: overall=%v academic=%v", ErrInvalidScore, overall, academic)
	}
	if academic < 0 || academic > 100 {
		return "", fmt.Errorf("%w: academic %v is not a score in [0,100]", ErrInvalidScore, academic)
	}
	effective := (1-academicBlend)*overall + academicBlend*math.Min(overall, academic)
	return ScoreToCategory(effective)
}

// ClassifyCollege is the three-way label for an overall score fraction in [0,1].
// Highly selective colleges are always Reach and colleges admitting fewer than
// 15% are capped at Match.
func ClassifyCollege(fraction float64, selectivity models.SelectivityLevel, college *models.CollegeRecord) (models.MatchLabel, error) {
	if !isFinite(fraction) || fraction < 0 || fraction > 1 {
		return "", fmt.Errorf("%w: fraction %v is not in [0,1]", ErrInvalidScore, fraction)
	}
	if selectivity == models.SelectivityHighly {
		return models.MatchReach, nil
	}

	var label models.MatchLabel
	switch {
	case fraction >= matchSafetyFrom:
		label = models.MatchSafety
	case fraction >= matchMatchFrom:
		label = models.MatchMatch
	default:
		label = models.MatchReach
	}

	if college != nil && label == models.MatchSafety {
		if rate, ok := NormalizeAcceptanceRate(college.AcceptanceRate); ok && rate < nearEliteBelow {
			label = models.MatchMatch
		}
	}
	return label, nil
}

// applySelectivityFloor keeps selective colleges out of the likely-admit bands.
func applySelectivityFloor(c models.Category, f *NormalizedCollegeFeatures) models.Category {
	if f.SelectivityLevel == models.SelectivityHighly && (c == models.CategorySafety || c == models.CategoryTarget) {
		return models.CategoryReach
	}
	if c == models.CategorySafety && f.HasAcceptanceRate && f.AcceptanceRate < nearEliteBelow {
		return models.CategoryTarget
	}
	return c
}

// ToClassification maps the canonical category onto the persisted three-way label.
func ToClassification(c models.Category) models.Classification {
	switch c {
	case models.CategorySafety:
		return models.ClassificationSafety
	case models.CategoryTarget:
		return models.ClassificationTarget
	default:
		return models.ClassificationReach
	}
}

// ToMatchLabel maps the canonical category onto the Reach/Match/Safety vocabulary.
func ToMatchLabel(c models.Category) models.MatchLabel {
	switch c {
	case models.CategorySafety:
		return models.MatchSafety
	case models.CategoryTarget:
		return models.MatchMatch
	default:
		return models.MatchReach
	}
}

// ParseClassification accepts any of the three vocabularies, case-insensitively.
func ParseClassification(raw string) (models.Classification, bool) {
	switch models.Classification(upper(raw)) {
	case models.ClassificationSafety:
		return models.ClassificationSafety, true
	case models.ClassificationTarget, "MATCH":
		return models.ClassificationTarget, true
	case models.ClassificationReach, "UNREALISTIC":
		return models.ClassificationReach, true
	}
	return "", false
}
