// internal/engine/weights.go
package engine

import (
	"errors"
	"fmt"
	"math"

	"college-fit-workers/internal/models"
)

const weightTolerance = 1e-9

// Weights are the per-dimension multipliers of the overall fit score.
type Weights struct {
	MajorAlignment       float64 `mapstructure:"major_alignment" json:"major_alignment"`
	AcademicFit          float64 `mapstructure:"academic_fit" json:"academic_fit"`
	TestCompatibility    float64 `mapstructure:"test_compatibility" json:"test_compatibility"`
	CountryPreference    float64 `mapstructure:"country_preference" json:"country_preference"`
	CostAlignment        float64 `mapstructure:"cost_alignment" json:"cost_alignment"`
	AdmissionProbability float64 `mapstructure:"admission_probability" json:"admission_probability"`
}

var DefaultWeights = Weights{
	MajorAlignment:       0.25,
	AcademicFit:          0.20,
	TestCompatibility:    0.15,
	CountryPreference:    0.10,
	CostAlignment:        0.15,
	AdmissionProbability: 0.15,
}

var ErrInvalidWeights = errors.New("invalid scoring weights")

func init() {
	if err := DefaultWeights.Validate(); err != nil {
		panic(err)
	}
}

func (w Weights) values() []float64 {
	return []float64{
		w.MajorAlignment,
		w.AcademicFit,
		w.TestCompatibility,
		w.CountryPreference,
		w.CostAlignment,
		w.AdmissionProbability,
	}
}

func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.values() {
		sum += v
	}
	return sum
}

// Validate requires every weight to be finite and non-negative and the set to sum to 1.
func (w Weights) Validate() error {
	for _, v := range w.values() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: weight %v is not a non-negative finite number", ErrInvalidWeights, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// IsZero reports whether no weight was configured.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

// Combine returns the weighted overall score in [0,100].
func (w Weights) Combine(s models.SignalScores) (int, error) {
	total := s.Major*w.MajorAlignment +
		s.Academic*w.AcademicFit +
		s.Test*w.TestCompatibility +
		s.Country*w.CountryPreference +
		s.Cost*w.CostAlignment +
		s.Admission*w.AdmissionProbability
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: weighted total is %v", ErrInvalidScore, total)
	}
	score := int(math.Round(total * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
