// internal/models/lenient.go
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var (
	profileNumberKeys = []string{"percentage", "gpa"}
	profileStringKeys = []string{"user_id", "name", "curriculum_board", "gpa_scale", "intended_major"}
	profileListKeys   = []string{"subjects", "target_countries", "intended_majors"}
)

// coerceProfile rewrites a canonical profile map so that decoding cannot fail
// on one badly typed field. Values that cannot be read are dropped.
func coerceProfile(m map[string]interface{}) {
	for _, k := range profileNumberKeys {
		coerceNumber(m, k)
	}
	for _, k := range profileStringKeys {
		coerceString(m, k)
	}
	for _, k := range profileListKeys {
		coerceList(m, k)
	}

	switch m["exams"].(type) {
	case nil, map[string]interface{}, map[string]ExamResult:
	default:
		delete(m, "exams")
	}

	if v, ok := m["financial"]; ok {
		fin, isMap := v.(map[string]interface{})
		if !isMap {
			delete(m, "financial")
			return
		}
		coerceNumber(fin, "max_budget")
		coerceString(fin, "currency")
		coerceBool(fin, "loan_willing")
		coerceBool(fin, "needs_financial_aid")
	}
}

func coerceNumber(m map[string]interface{}, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	if f, ok := lenientFloat(v); ok {
		m[key] = f
		return
	}
	delete(m, key)
}

func coerceString(m map[string]interface{}, key string) {
	switch v := m[key].(type) {
	case nil, string:
	case json.Number:
		m[key] = v.String()
	default:
		if f, ok := lenientFloat(v); ok {
			m[key] = strconv.FormatFloat(f, 'f', -1, 64)
			return
		}
		delete(m, key)
	}
}

func coerceBool(m map[string]interface{}, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch b := v.(type) {
	case bool:
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "yes", "y":
				parsed = true
			default:
				parsed = false
			}
		}
		m[key] = parsed
	default:
		if f, ok := lenientFloat(b); ok {
			m[key] = f != 0
			return
		}
		delete(m, key)
	}
}

// coerceList accepts a single string for a list field and keeps only the
// string entries of a list.
func coerceList(m map[string]interface{}, key string) {
	switch v := m[key].(type) {
	case nil, []string:
	case string:
		if s := strings.TrimSpace(v); s != "" {
			m[key] = []interface{}{s}
		} else {
			delete(m, key)
		}
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		m[key] = out
	default:
		delete(m, key)
	}
}

// lenientFloat reads numbers that arrive as strings from form fields, e.g.
// "4,000,000", "$52000" or "85%".
func lenientFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return lenientFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		return lenientFloat(n.String())
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func normalizeExamStatus(s string) ExamStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return ExamStatus(s)
}
