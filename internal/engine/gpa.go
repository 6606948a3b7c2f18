// internal/engine/gpa.go
package engine

import (
	"math"
	"strings"
)

// GradingScale identifies the maximum of a grade value.
type GradingScale string

const (
	Scale4          GradingScale = "4.0"
	Scale5          GradingScale = "5.0"
	Scale10         GradingScale = "10.0"
	ScalePercentage GradingScale = "percentage"
)

var scaleMax = map[GradingScale]float64{
	Scale4:          4,
	Scale5:          5,
	Scale10:         10,
	ScalePercentage: 100,
}

// Max is the top of the scale. Unknown scales are read as 4.0.
func (s GradingScale) Max() float64 {
	if m, ok := scaleMax[s]; ok {
		return m
	}
	return 4
}

// ParseGradingScale maps the spellings stored on profiles onto a known scale.
// Empty input is the 4.0 scale.
func ParseGradingScale(raw string) GradingScale {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "out of ")
	s = strings.TrimPrefix(s, "/")
	switch s {
	case "5", "5.0":
		return Scale5
	case "10", "10.0", "cgpa":
		return Scale10
	case "100", "100.0", "%", "percent", "percentage":
		return ScalePercentage
	default:
		return Scale4
	}
}

// DetectScale corrects a 4.0 declaration that cannot hold the value. Values
// above 4.5 on a declared 4.0 scale are re-read as 5.0, 10.0 or percentage.
func DetectScale(value float64, declared GradingScale) GradingScale {
	if declared != Scale4 || value <= 4.5 {
		return declared
	}
	switch {
	case value <= 5:
		return Scale5
	case value <= 10:
		return Scale10
	default:
		return ScalePercentage
	}
}

// NormalizeGPA maps value on scale onto the common 4.0 basis, clamped to [0,4].
// It is monotonic in value and NormalizeGPA(scale.Max(), scale) == 4.
func NormalizeGPA(value float64, scale GradingScale) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return clamp(value/scale.Max()*4, 0, 4)
}
