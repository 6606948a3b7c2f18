// internal/engine/signals_test.go
package engine

import (
	"testing"

	"college-fit-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGPA_MonotonicAndMaxIsFour(t *testing.T) {
	for _, scale := range []GradingScale{Scale4, Scale5, Scale10, ScalePercentage} {
		t.Run(string(scale), func(t *testing.T) {
			top := scale.Max()
			assert.InDelta(t, 4.0, NormalizeGPA(top, scale), 1e-12)

			prev := NormalizeGPA(0, scale)
			step := top / 200
			for x := step; x <= top*1.2; x += step {
				got := NormalizeGPA(x, scale)
				assert.GreaterOrEqual(t, got, prev, "x=%v", x)
				prev = got
			}
		})
	}
}

func TestNormalizeGPA_KnownValues(t *testing.T) {
	assert.InDelta(t, 3.2, NormalizeGPA(4, Scale5), 1e-9)
	assert.InDelta(t, 3.4, NormalizeGPA(8.5, Scale10), 1e-9)
	assert.InDelta(t, 3.4, NormalizeGPA(85, ScalePercentage), 1e-9)
	assert.Equal(t, 0.0, NormalizeGPA(-1, Scale4))
}

func TestParseGradingScale(t *testing.T) {
	tests := map[string]GradingScale{
		"":           Scale4,
		"4.0":        Scale4,
		"5":          Scale5,
		"out of 10":  Scale10,
		"CGPA":       Scale10,
		"Percentage": ScalePercentage,
		"%":          ScalePercentage,
		"100":        ScalePercentage,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseGradingScale(raw), raw)
	}
}

func TestDetectScale(t *testing.T) {
	assert.Equal(t, Scale4, DetectScale(3.9, Scale4))
	assert.Equal(t, Scale5, DetectScale(4.8, Scale4))
	assert.Equal(t, Scale10, DetectScale(8.7, Scale4))
	assert.Equal(t, ScalePercentage, DetectScale(88, Scale4))
	assert.Equal(t, Scale10, DetectScale(88, Scale10), "declared non-4.0 scales are trusted")
}

func TestDeriveUserSignals_AcademicStrength(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name         string
		profile      models.UserAcademicProfile
		want         AcademicStrength
		insufficient bool
	}{
		{"exceptional at 90", models.UserAcademicProfile{Percentage: floatPtr(90)}, StrengthExceptional, false},
		{"strong just below 90", models.UserAcademicProfile{Percentage: floatPtr(89.9)}, StrengthStrong, false},
		{"strong at 75", models.UserAcademicProfile{Percentage: floatPtr(75)}, StrengthStrong, false},
		{"moderate below 75", models.UserAcademicProfile{Percentage: floatPtr(74.9)}, StrengthModerate, false},
		{"moderate at 60", models.UserAcademicProfile{Percentage: floatPtr(60)}, StrengthModerate, false},
		{"weak below 60", models.UserAcademicProfile{Percentage: floatPtr(59)}, StrengthWeak, false},
		{"gpa only", models.UserAcademicProfile{GPA: floatPtr(3.8)}, StrengthExceptional, false},
		{"gpa on ten scale", models.UserAcademicProfile{GPA: floatPtr(7.0), GPAScale: "10"}, StrengthModerate, false},
		{"no grades", models.UserAcademicProfile{}, StrengthWeak, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DeriveUserSignals(&tt.profile, cfg)
			assert.Equal(t, tt.want, s.AcademicStrengthLevel)
			assert.Equal(t, tt.insufficient, s.InsufficientAcademicData)
		})
	}
}

func TestDeriveUserSignals_CarriesScale(t *testing.T) {
	s := DeriveUserSignals(&models.UserAcademicProfile{GPA: floatPtr(8.0), GPAScale: "10.0"}, DefaultConfig())
	assert.Equal(t, Scale10, s.GPAScale)
	assert.InDelta(t, 3.2, s.GPA4, 1e-9)

	s = DeriveUserSignals(&models.UserAcademicProfile{Percentage: floatPtr(80)}, DefaultConfig())
	assert.Equal(t, ScalePercentage, s.GPAScale)
	assert.InDelta(t, 3.2, s.GPA4, 1e-9)
}

func TestDeriveUserSignals_TestStatus(t *testing.T) {
	profile := &models.UserAcademicProfile{
		Exams: map[string]models.ExamResult{
			"sat":   {Status: models.ExamStatusCompleted, Score: floatPtr(1450)},
			"IELTS": {Status: models.ExamStatusPlanned},
			"TOEFL": {Status: models.ExamStatusNotTaken, Score: floatPtr(100)},
			"ACT":   {Status: models.ExamStatusCompleted},
		},
	}

	s := DeriveUserSignals(profile, DefaultConfig())
	assert.True(t, s.TestStatus.HasSAT)
	assert.False(t, s.TestStatus.HasACT, "completed without score does not count")
	assert.False(t, s.TestStatus.HasIELTS, "planned does not count")
	assert.False(t, s.TestStatus.HasTOEFL, "not_taken does not count")
	assert.True(t, s.TestStatus.HasStandardizedTest)
	assert.False(t, s.TestStatus.HasLanguageTest)
	assert.True(t, s.TestStatus.Planned["IELTS"])

	score, ok := s.TestStatus.Score("sat")
	assert.True(t, ok)
	assert.Equal(t, 1450.0, score)
}

func TestDeriveUserSignals_MajorIntent(t *testing.T) {
	s := DeriveUserSignals(&models.UserAcademicProfile{IntendedMajors: []string{"Physics", "Mathematics"}}, DefaultConfig())
	assert.True(t, s.MajorIntent.HasIntent)
	assert.Equal(t, "Physics", s.MajorIntent.Primary)
	assert.Equal(t, []string{"Physics", "Mathematics"}, s.MajorIntent.All)

	s = DeriveUserSignals(&models.UserAcademicProfile{IntendedMajor: "Economics", IntendedMajors: []string{"economics", "History"}}, DefaultConfig())
	assert.Equal(t, "Economics", s.MajorIntent.Primary)
	assert.Equal(t, []string{"Economics", "History"}, s.MajorIntent.All)

	s = DeriveUserSignals(&models.UserAcademicProfile{}, DefaultConfig())
	assert.False(t, s.MajorIntent.HasIntent)
}

func TestDeriveUserSignals_Countries(t *testing.T) {
	s := DeriveUserSignals(&models.UserAcademicProfile{
		TargetCountries: []string{"usa", "United Kingdom", "GB", " canada ", ""},
	}, DefaultConfig())

	assert.Equal(t, []string{"CA", "UK", "US"}, s.Countries())
}

func TestDeriveUserSignals_BudgetBrackets(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name     string
		budget   float64
		currency string
		want     BudgetLevel
		usd      float64
	}{
		{"constrained in INR", 2000000, "", BudgetConstrained, 24000},
		{"moderate in INR", 4000000, "INR", BudgetModerate, 48000},
		{"comfortable in USD", 60000, "USD", BudgetComfortable, 60000},
		{"just below constrained cut", 29999, "usd", BudgetConstrained, 29999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DeriveUserSignals(&models.UserAcademicProfile{
				Financial: models.FinancialConstraints{MaxBudget: tt.budget, Currency: tt.currency},
			}, cfg)
			assert.True(t, s.BudgetSensitivity.HasBudget)
			assert.Equal(t, tt.want, s.BudgetSensitivity.Level)
			assert.InDelta(t, tt.usd, s.BudgetSensitivity.MaxBudgetUSD, 0.01)
		})
	}

	s := DeriveUserSignals(&models.UserAcademicProfile{}, cfg)
	assert.False(t, s.BudgetSensitivity.HasBudget)
}
