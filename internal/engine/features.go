// internal/engine/features.go
package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"college-fit-workers/internal/models"
)

const (
	highlySelectiveBelow    = 0.10
	moderatelySelectiveUpTo = 0.40
	satMin, satMax          = 0.0, 1600.0
	actMin, actMax          = 0.0, 36.0
)

// ScoreRange is a published middle-50% band. Known is false when the catalog
// had no usable range and the widest plausible band was substituted.
type ScoreRange struct {
	Min   float64
	Max   float64
	Known bool
}

func (r ScoreRange) Mid() float64  { return (r.Min + r.Max) / 2 }
func (r ScoreRange) Half() float64 { return (r.Max - r.Min) / 2 }

type Requirements struct {
	MinPercentage *float64
	// RequiredExams are upper-case exam names in catalog order.
	RequiredExams []string
	ExamMinimums  map[string]float64
	TestOptional  bool
	SATRange      ScoreRange
	ACTRange      ScoreRange
	// AvgGPA is on the 4.0 basis.
	AvgGPA *float64
}

// Requires reports whether exam is in the required list.
func (r Requirements) Requires(exam string) bool {
	exam = strings.ToUpper(exam)
	for _, e := range r.RequiredExams {
		if e == exam {
			return true
		}
	}
	return false
}

// RequiresStandardizedTest is true when SAT or ACT is required and the college
// is not test-optional.
func (r Requirements) RequiresStandardizedTest() bool {
	return !r.TestOptional && (r.Requires("SAT") || r.Requires("ACT") || r.Requires("SAT/ACT"))
}

type NormalizedCollegeFeatures struct {
	Programs          []string
	SelectivityLevel  models.SelectivityLevel
	AcceptanceRate    float64
	HasAcceptanceRate bool
	EstimatedCostUSD  float64
	HasCost           bool
	Requirements      Requirements
	Research          map[string]interface{}
	ResearchIntensive bool
	Country           string
	FinancialAid      bool
}

// NormalizeCollegeFeatures parses every JSON-encoded field of a catalog record.
// Malformed or missing fields degrade to empty values; it never fails.
func NormalizeCollegeFeatures(c *models.CollegeRecord, cfg Config) NormalizedCollegeFeatures {
	var f NormalizedCollegeFeatures
	if c == nil {
		f.Requirements = parseRequirements(nil)
		return f
	}

	f.Country = models.CanonicalCountry(c.Country)
	f.FinancialAid = c.FinancialAidAvailable

	if rate, ok := NormalizeAcceptanceRate(c.AcceptanceRate); ok {
		f.AcceptanceRate = rate
		f.HasAcceptanceRate = true
	}
	f.SelectivityLevel = SelectivityFor(c.AcceptanceRate)

	f.Programs = parsePrograms(c.Programs)

	var req map[string]interface{}
	if !c.Requirements.Decode(&req) {
		req = nil
	}
	f.Requirements = parseRequirements(req)

	if !c.ResearchData.Decode(&f.Research) {
		f.Research = map[string]interface{}{}
	}
	f.ResearchIntensive = isResearchIntensive(f.Research)

	var cost map[string]interface{}
	if c.CostData.Decode(&cost) {
		f.EstimatedCostUSD, f.HasCost = estimateCostUSD(models.NormalizeCostKeys(cost), cfg)
	}
	return f
}

// NormalizeAcceptanceRate reads the stored rate as a fraction. Rates stored as
// percentages (greater than 1) are divided by 100.
func NormalizeAcceptanceRate(rate *float64) (float64, bool) {
	if rate == nil || !isFinite(*rate) || *rate < 0 {
		return 0, false
	}
	r := *rate
	if r > 1 {
		r /= 100
	}
	if r > 1 {
		return 0, false
	}
	return r, true
}

// SelectivityFor buckets an acceptance rate: below 10% is highly selective,
// 10% through 40% moderately selective, above 40% less selective. A missing
// rate yields SelectivityUnknown.
func SelectivityFor(rate *float64) models.SelectivityLevel {
	r, ok := NormalizeAcceptanceRate(rate)
	if !ok {
		return models.SelectivityUnknown
	}
	switch {
	case r < highlySelectiveBelow:
		return models.SelectivityHighly
	case r <= moderatelySelectiveUpTo:
		return models.SelectivityModerately
	default:
		return models.SelectivityLess
	}
}

func parsePrograms(raw models.RawJSON) []string {
	var decoded interface{}
	if !raw.Decode(&decoded) {
		return []string{}
	}
	var out []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch p := v.(type) {
		case string:
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		case []interface{}:
			for _, item := range p {
				walk(item)
			}
		case map[string]interface{}:
			for _, key := range []string{"name", "program", "title", "major"} {
				if s, ok := p[key].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					return
				}
			}
			// grouped form: {"undergraduate": [...], "graduate": [...]}
			keys := make([]string, 0, len(p))
			for k := range p {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if list, ok := p[k].([]interface{}); ok {
					walk(list)
				}
			}
		}
	}
	walk(decoded)
	if out == nil {
		return []string{}
	}
	return out
}

func parseRequirements(raw map[string]interface{}) Requirements {
	r := Requirements{ExamMinimums: map[string]float64{}}
	req := models.NormalizeRequirementKeys(raw)

	if v, ok := toFloat(req["min_percentage"]); ok && v > 0 {
		r.MinPercentage = &v
	}
	r.TestOptional = toBool(req["test_optional"])

	seen := map[string]bool{}
	addExam := func(name string, minimum interface{}) {
		key := strings.ToUpper(strings.TrimSpace(name))
		if key == "" {
			return
		}
		if !seen[key] {
			seen[key] = true
			r.RequiredExams = append(r.RequiredExams, key)
		}
		if m, ok := toFloat(minimum); ok && m > 0 {
			r.ExamMinimums[key] = m
		}
	}
	switch exams := req["required_exams"].(type) {
	case []interface{}:
		for _, e := range exams {
			switch item := e.(type) {
			case string:
				addExam(item, nil)
			case map[string]interface{}:
				name, _ := item["name"].(string)
				if name == "" {
					name, _ = item["exam"].(string)
				}
				minimum := item["min_score"]
				if minimum == nil {
					minimum = item["minimum"]
				}
				addExam(name, minimum)
			}
		}
	case map[string]interface{}:
		names := make([]string, 0, len(exams))
		for k := range exams {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, name := range names {
			addExam(name, exams[name])
		}
	case string:
		for _, name := range strings.Split(exams, ",") {
			addExam(name, nil)
		}
	}
	for _, exam := range []string{"IELTS", "TOEFL", "SAT", "ACT"} {
		if m, ok := toFloat(req[strings.ToLower(exam)+"_min"]); ok && m > 0 {
			addExam(exam, m)
		}
	}

	r.SATRange = ParseSATRange(req["sat_range"])
	r.ACTRange = ParseACTRange(req["act_range"])

	if v, ok := toFloat(req["avg_gpa"]); ok && v > 0 {
		g := NormalizeGPA(v, DetectScale(v, Scale4))
		r.AvgGPA = &g
	}
	return r
}

var rangePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:-|\x{2013}|\x{2014}|to)\s*(\d+(?:\.\d+)?)\s*$`)

// ParseSATRange parses a "min-max" SAT band. Missing or malformed input returns
// [0,1600] with Known false.
func ParseSATRange(v interface{}) ScoreRange {
	return parseRange(v, satMin, satMax)
}

// ParseACTRange parses a "min-max" ACT band. Missing or malformed input returns
// [0,36] with Known false.
func ParseACTRange(v interface{}) ScoreRange {
	return parseRange(v, actMin, actMax)
}

func parseRange(v interface{}, lo, hi float64) ScoreRange {
	fallback := ScoreRange{Min: lo, Max: hi}
	var from, to float64
	switch r := v.(type) {
	case string:
		m := rangePattern.FindStringSubmatch(r)
		if m == nil {
			return fallback
		}
		from, _ = strconv.ParseFloat(m[1], 64)
		to, _ = strconv.ParseFloat(m[2], 64)
	case []interface{}:
		if len(r) != 2 {
			return fallback
		}
		var ok1, ok2 bool
		from, ok1 = toFloat(r[0])
		to, ok2 = toFloat(r[1])
		if !ok1 || !ok2 {
			return fallback
		}
	case map[string]interface{}:
		var ok1, ok2 bool
		from, ok1 = toFloat(r["min"])
		to, ok2 = toFloat(r["max"])
		if !ok1 || !ok2 {
			return fallback
		}
	default:
		return fallback
	}
	if from < lo || to > hi || from >= to {
		return fallback
	}
	return ScoreRange{Min: from, Max: to, Known: true}
}

func isResearchIntensive(research map[string]interface{}) bool {
	if toBool(research["research_intensive"]) {
		return true
	}
	if level, ok := research["research_level"].(string); ok {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "high", "very high", "very_high", "r1":
			return true
		}
	}
	if c, ok := research["classification"].(string); ok && strings.EqualFold(strings.TrimSpace(c), "r1") {
		return true
	}
	return false
}

// estimateCostUSD picks total cost when published, otherwise the international
// (or out-of-state, or base) tuition plus living cost.
func estimateCostUSD(cost map[string]interface{}, cfg Config) (float64, bool) {
	currency, _ := cost["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	if total, ok := toFloat(cost["total_cost"]); ok && total > 0 {
		return cfg.ToUSD(total, currency), true
	}
	var tuition float64
	found := false
	for _, key := range []string{"tuition_international", "tuition_out_of_state", "tuition"} {
		if v, ok := toFloat(cost[key]); ok && v > 0 {
			tuition = v
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}
	if living, ok := toFloat(cost["living_cost"]); ok && living > 0 {
		tuition += living
	}
	return cfg.ToUSD(tuition, currency), true
}
