// internal/engine/signals.go
package engine

import (
	"sort"
	"strings"

	"college-fit-workers/internal/models"
)

type AcademicStrength string

const (
	StrengthWeak        AcademicStrength = "weak"
	StrengthModerate    AcademicStrength = "moderate"
	StrengthStrong      AcademicStrength = "strong"
	StrengthExceptional AcademicStrength = "exceptional"
)

type BudgetLevel string

const (
	BudgetConstrained BudgetLevel = "constrained"
	BudgetModerate    BudgetLevel = "moderate"
	BudgetComfortable BudgetLevel = "comfortable"
)

var (
	standardizedTests = []string{"SAT", "ACT"}
	languageTests     = []string{"IELTS", "TOEFL"}
)

type TestStatus struct {
	HasSAT              bool
	HasACT              bool
	HasIELTS            bool
	HasTOEFL            bool
	HasStandardizedTest bool
	HasLanguageTest     bool
	// Scores holds completed exams only, keyed by upper-case exam name.
	Scores  map[string]float64
	Planned map[string]bool
}

func (t TestStatus) Score(exam string) (float64, bool) {
	s, ok := t.Scores[strings.ToUpper(exam)]
	return s, ok
}

type MajorIntent struct {
	Primary   string
	All       []string
	HasIntent bool
}

type BudgetSensitivity struct {
	Level        BudgetLevel
	HasBudget    bool
	MaxBudget    float64
	Currency     string
	MaxBudgetUSD float64
	LoanWilling  bool
	NeedsAid     bool
}

// NormalizedSignals is the per-run view of a student profile. It is built once
// per generation and shared by every college evaluation.
type NormalizedSignals struct {
	AcademicStrengthLevel AcademicStrength
	// InsufficientAcademicData marks that no grade was reported. Consumers read
	// it as absence; the weak tier is never scored as a zero.
	InsufficientAcademicData bool
	Percentage               float64
	HasPercentage            bool
	GPA4                     float64
	GPAScale                 GradingScale

	TestStatus         TestStatus
	MajorIntent        MajorIntent
	CountryPreferences map[string]bool
	BudgetSensitivity  BudgetSensitivity
}

// HasCountryPreferences reports whether the student named any target country.
func (s *NormalizedSignals) HasCountryPreferences() bool {
	return len(s.CountryPreferences) > 0
}

// Countries returns the preference set in sorted order.
func (s *NormalizedSignals) Countries() []string {
	out := make([]string, 0, len(s.CountryPreferences))
	for c := range s.CountryPreferences {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DeriveUserSignals normalizes a profile. It never fails; missing fields default
// to neutral values.
func DeriveUserSignals(p *models.UserAcademicProfile, cfg Config) NormalizedSignals {
	var s NormalizedSignals
	if p == nil {
		p = &models.UserAcademicProfile{}
	}

	deriveAcademic(&s, p)
	s.TestStatus = deriveTestStatus(p.Exams)
	s.MajorIntent = deriveMajorIntent(p)

	s.CountryPreferences = make(map[string]bool, len(p.TargetCountries))
	for _, c := range p.TargetCountries {
		if canon := models.CanonicalCountry(c); canon != "" {
			s.CountryPreferences[canon] = true
		}
	}

	s.BudgetSensitivity = deriveBudget(p.Financial, cfg)
	return s
}

func deriveAcademic(s *NormalizedSignals, p *models.UserAcademicProfile) {
	hasGPA := p.GPA != nil && isFinite(*p.GPA) && *p.GPA > 0
	if hasGPA {
		s.GPAScale = DetectScale(*p.GPA, ParseGradingScale(p.GPAScale))
		s.GPA4 = NormalizeGPA(*p.GPA, s.GPAScale)
	}

	switch {
	case p.Percentage != nil && isFinite(*p.Percentage) && *p.Percentage > 0:
		s.Percentage = clamp(*p.Percentage, 0, 100)
		s.HasPercentage = true
	case hasGPA && s.GPAScale == ScalePercentage:
		s.Percentage = clamp(*p.GPA, 0, 100)
		s.HasPercentage = true
	}

	if !hasGPA && s.HasPercentage {
		s.GPAScale = ScalePercentage
		s.GPA4 = NormalizeGPA(s.Percentage, ScalePercentage)
	}

	var pct float64
	switch {
	case s.HasPercentage:
		pct = s.Percentage
	case hasGPA:
		pct = s.GPA4 / 4 * 100
	default:
		s.AcademicStrengthLevel = StrengthWeak
		s.InsufficientAcademicData = true
		return
	}
	s.AcademicStrengthLevel = strengthFor(pct)
}

func strengthFor(pct float64) AcademicStrength {
	switch {
	case pct >= 90:
		return StrengthExceptional
	case pct >= 75:
		return StrengthStrong
	case pct >= 60:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

func deriveTestStatus(exams map[string]models.ExamResult) TestStatus {
	t := TestStatus{
		Scores:  make(map[string]float64),
		Planned: make(map[string]bool),
	}
	for name, result := range exams {
		key := strings.ToUpper(strings.TrimSpace(name))
		switch result.Status {
		case models.ExamStatusCompleted:
			if result.Score != nil && isFinite(*result.Score) && *result.Score > 0 {
				t.Scores[key] = *result.Score
			}
		case models.ExamStatusPlanned:
			t.Planned[key] = true
		}
	}
	_, t.HasSAT = t.Scores["SAT"]
	_, t.HasACT = t.Scores["ACT"]
	_, t.HasIELTS = t.Scores["IELTS"]
	_, t.HasTOEFL = t.Scores["TOEFL"]
	t.HasStandardizedTest = t.HasSAT || t.HasACT
	t.HasLanguageTest = t.HasIELTS || t.HasTOEFL
	return t
}

func deriveMajorIntent(p *models.UserAcademicProfile) MajorIntent {
	var all []string
	seen := map[string]bool{}
	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" || seen[foldText(m)] {
			return
		}
		seen[foldText(m)] = true
		all = append(all, m)
	}
	add(p.IntendedMajor)
	for _, m := range p.IntendedMajors {
		add(m)
	}
	if len(all) == 0 {
		return MajorIntent{}
	}
	return MajorIntent{Primary: all[0], All: all, HasIntent: true}
}

func deriveBudget(f models.FinancialConstraints, cfg Config) BudgetSensitivity {
	b := BudgetSensitivity{
		MaxBudget:   f.MaxBudget,
		Currency:    strings.ToUpper(strings.TrimSpace(f.Currency)),
		LoanWilling: f.LoanWilling,
		NeedsAid:    f.NeedsAid,
	}
	if b.Currency == "" {
		b.Currency = strings.ToUpper(cfg.DefaultCurrency)
	}
	if !isFinite(f.MaxBudget) || f.MaxBudget <= 0 {
		return b
	}
	b.HasBudget = true
	b.MaxBudgetUSD = cfg.ToUSD(f.MaxBudget, b.Currency)
	switch {
	case b.MaxBudgetUSD < cfg.BudgetBrackets.ConstrainedMaxUSD:
		b.Level = BudgetConstrained
	case b.MaxBudgetUSD < cfg.BudgetBrackets.ModerateMaxUSD:
		b.Level = BudgetModerate
	default:
		b.Level = BudgetComfortable
	}
	return b
}
