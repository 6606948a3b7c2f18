// internal/models/aliases.go
package models

import "strings"

// profileKeyAliases maps every accepted spelling of a profile field to its canonical key.
var profileKeyAliases = map[string]string{
	"userId":                "user_id",
	"id":                    "user_id",
	"curriculumBoard":       "curriculum_board",
	"board":                 "curriculum_board",
	"gpaScale":              "gpa_scale",
	"grading_scale":         "gpa_scale",
	"gradingScale":          "gpa_scale",
	"exam_scores":           "exams",
	"examScores":            "exams",
	"tests":                 "exams",
	"financial_constraints": "financial",
	"financialConstraints":  "financial",
	"targetCountries":       "target_countries",
	"preferred_countries":   "target_countries",
	"preferredCountries":    "target_countries",
	"intendedMajor":         "intended_major",
	"intendedMajors":        "intended_majors",
}

// financialKeyAliases covers keys that belong under "financial", whether they
// arrive nested or flat on the profile.
var financialKeyAliases = map[string]string{
	"max_budget":          "max_budget",
	"maxBudget":           "max_budget",
	"budget_max":          "max_budget",
	"budgetMax":           "max_budget",
	"budget":              "max_budget",
	"currency":            "currency",
	"budget_currency":     "currency",
	"budgetCurrency":      "currency",
	"loan_willing":        "loan_willing",
	"loanWilling":         "loan_willing",
	"loan_willingness":    "loan_willing",
	"loanWillingness":     "loan_willing",
	"needs_financial_aid": "needs_financial_aid",
	"needsFinancialAid":   "needs_financial_aid",
	"needs_aid":           "needs_financial_aid",
	"aid_needed":          "needs_financial_aid",
}

// requirementKeyAliases normalizes the college requirements object.
var requirementKeyAliases = map[string]string{
	"minPercentage":    "min_percentage",
	"min_percent":      "min_percentage",
	"requiredExams":    "required_exams",
	"exams_required":   "required_exams",
	"testOptional":     "test_optional",
	"is_test_optional": "test_optional",
	"satRange":         "sat_range",
	"sat_score_range":  "sat_range",
	"actRange":         "act_range",
	"act_score_range":  "act_range",
	"avgGpa":           "avg_gpa",
	"averageGpa":       "avg_gpa",
	"average_gpa":      "avg_gpa",
	"ieltsMin":         "ielts_min",
	"toeflMin":         "toefl_min",
}

// costKeyAliases normalizes the college cost object.
var costKeyAliases = map[string]string{
	"tuitionInternational":  "tuition_international",
	"international_tuition": "tuition_international",
	"tuitionOutOfState":     "tuition_out_of_state",
	"out_of_state_tuition":  "tuition_out_of_state",
	"livingCost":            "living_cost",
	"cost_of_living":        "living_cost",
	"costOfLiving":          "living_cost",
	"totalCost":             "total_cost",
}

// collegeKeyAliases covers catalog records passed inline in job variables.
var collegeKeyAliases = map[string]string{
	"collegeId":             "id",
	"college_id":            "id",
	"collegeName":           "name",
	"college_name":          "name",
	"acceptanceRate":        "acceptance_rate",
	"researchData":          "research_data",
	"costData":              "cost_data",
	"trustTier":             "trust_tier",
	"financialAidAvailable": "financial_aid_available",
}

// NormalizeProfileKeys returns a copy of raw with canonical keys. Flat financial
// keys are folded into the "financial" object; nested keys win over flat ones.
func NormalizeProfileKeys(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	financial := map[string]interface{}{}
	var nested map[string]interface{}

	for k, v := range raw {
		if canon, ok := financialKeyAliases[k]; ok {
			financial[canon] = v
			continue
		}
		key := k
		if canon, ok := profileKeyAliases[k]; ok {
			key = canon
		}
		if key == "financial" {
			if m, ok := v.(map[string]interface{}); ok {
				nested = m
			}
			continue
		}
		if _, exists := out[key]; exists && key != k {
			// canonical spelling already present; it wins over the alias
			continue
		}
		out[key] = v
	}

	for k, v := range NormalizeKeys(nested, financialKeyAliases) {
		financial[k] = v
	}
	if len(financial) > 0 {
		out["financial"] = financial
	}
	return out
}

// NormalizeCollegeKeys canonicalizes an inline college record.
func NormalizeCollegeKeys(raw map[string]interface{}) map[string]interface{} {
	return NormalizeKeys(raw, collegeKeyAliases)
}

// NormalizeRequirementKeys canonicalizes a decoded requirements object.
func NormalizeRequirementKeys(raw map[string]interface{}) map[string]interface{} {
	return NormalizeKeys(raw, requirementKeyAliases)
}

// NormalizeCostKeys canonicalizes a decoded cost object.
func NormalizeCostKeys(raw map[string]interface{}) map[string]interface{} {
	return NormalizeKeys(raw, costKeyAliases)
}

// NormalizeKeys renames the keys of raw using aliases. Canonical keys already
// present are never overwritten by an alias.
func NormalizeKeys(raw map[string]interface{}, aliases map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if _, isAlias := aliases[k]; !isAlias {
			out[k] = v
		}
	}
	for k, v := range raw {
		canon, isAlias := aliases[k]
		if !isAlias {
			continue
		}
		if _, exists := out[canon]; exists {
			continue
		}
		out[canon] = v
	}
	return out
}

var countryAliases = map[string]string{
	"us":                       "US",
	"usa":                      "US",
	"u.s.":                     "US",
	"u.s.a.":                   "US",
	"united states":            "US",
	"united states of america": "US",
	"america":                  "US",
	"uk":                       "UK",
	"u.k.":                     "UK",
	"gb":                       "UK",
	"great britain":            "UK",
	"united kingdom":           "UK",
	"england":                  "UK",
	"scotland":                 "UK",
	"ca":                       "CA",
	"canada":                   "CA",
	"au":                       "AU",
	"australia":                "AU",
	"de":                       "DE",
	"germany":                  "DE",
	"in":                       "IN",
	"india":                    "IN",
	"ie":                       "IE",
	"ireland":                  "IE",
	"nl":                       "NL",
	"netherlands":              "NL",
	"sg":                       "SG",
	"singapore":                "SG",
	"nz":                       "NZ",
	"new zealand":              "NZ",
	"fr":                       "FR",
	"france":                   "FR",
	"jp":                       "JP",
	"japan":                    "JP",
}

// CanonicalCountry case-normalizes a country name or code. Unknown names are
// upper-cased so comparisons stay case-insensitive.
func CanonicalCountry(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" {
		return ""
	}
	if canon, ok := countryAliases[c]; ok {
		return canon
	}
	return strings.ToUpper(c)
}
