// internal/models/profile.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ExamStatus string

const (
	ExamStatusCompleted ExamStatus = "completed"
	ExamStatusPlanned   ExamStatus = "planned"
	ExamStatusNotTaken  ExamStatus = "not_taken"
)

// ExamResult is one entry of the profile's exam map, keyed by exam name (SAT, ACT, IELTS, TOEFL).
type ExamResult struct {
	Status ExamStatus `json:"status"`
	Score  *float64   `json:"score,omitempty"`
}

type FinancialConstraints struct {
	MaxBudget   float64 `json:"max_budget"`
	Currency    string  `json:"currency,omitempty"`
	LoanWilling bool    `json:"loan_willing"`
	NeedsAid    bool    `json:"needs_financial_aid"`
}

// UserAcademicProfile is the read-only student profile consumed by the engine.
// GPA is meaningless without GPAScale; both always travel together.
type UserAcademicProfile struct {
	UserID          string                `json:"user_id"`
	Name            string                `json:"name,omitempty"`
	CurriculumBoard string                `json:"curriculum_board"`
	Percentage      *float64              `json:"percentage,omitempty"`
	GPA             *float64              `json:"gpa,omitempty"`
	GPAScale        string                `json:"gpa_scale,omitempty"`
	Subjects        []string              `json:"subjects,omitempty"`
	Exams           map[string]ExamResult `json:"exams,omitempty"`
	Financial       FinancialConstraints  `json:"financial"`
	TargetCountries []string              `json:"target_countries,omitempty"`
	IntendedMajor   string                `json:"intended_major,omitempty"`
	IntendedMajors  []string              `json:"intended_majors,omitempty"`
}

// IsComplete reports whether the profile carries the minimum needed to generate
// recommendations. A curriculum board is the documented precondition.
func (p *UserAcademicProfile) IsComplete() bool {
	return p != nil && strings.TrimSpace(p.CurriculumBoard) != ""
}

// UnmarshalJSON accepts {"status":"completed","score":1450}, a bare score
// (1450 or "1450") or a bare status ("planned"). Other shapes decode to the
// zero value so one bad entry never rejects the whole profile.
func (e *ExamResult) UnmarshalJSON(data []byte) error {
	*e = ExamResult{}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	switch x := v.(type) {
	case float64:
		e.Status = ExamStatusCompleted
		e.Score = &x
	case string:
		if f, ok := lenientFloat(x); ok {
			e.Status = ExamStatusCompleted
			e.Score = &f
			return nil
		}
		e.Status = normalizeExamStatus(x)
	case map[string]interface{}:
		if status, ok := x["status"].(string); ok {
			e.Status = normalizeExamStatus(status)
		}
		if f, ok := lenientFloat(x["score"]); ok {
			e.Score = &f
		}
	}
	return nil
}

// DecodeProfile decodes a profile payload that may use camelCase or snake_case keys.
func DecodeProfile(data []byte) (*UserAcademicProfile, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return ProfileFromMap(raw)
}

type plainProfile UserAcademicProfile

// ProfileFromMap applies the profile alias table once and decodes the canonical form.
func ProfileFromMap(raw map[string]interface{}) (*UserAcademicProfile, error) {
	normalized := NormalizeProfileKeys(raw)
	coerceProfile(normalized)
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode canonical profile: %w", err)
	}
	var out plainProfile
	if err := json.Unmarshal(canonical, &out); err != nil {
		return nil, fmt.Errorf("decode canonical profile: %w", err)
	}
	p := UserAcademicProfile(out)
	return &p, nil
}

// UnmarshalJSON lets job payloads carry either key casing.
func (p *UserAcademicProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := ProfileFromMap(raw)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
