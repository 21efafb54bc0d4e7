package resource

import "strings"

// The ten broad buckets every free-text "category of help" value maps onto.
const (
	CategoryFood       = "Food & Essential Needs"
	CategoryHousing    = "Housing & Shelter"
	CategoryHealth     = "Physical & General Health Care"
	CategoryBehavioral = "Behavioral Health, Substance Use, & Crisis"
	CategoryFinancial  = "Financial & Access Support"
	CategoryEmployment = "Employment, Training, & Education"
	CategoryYouth      = "Youth, Family, & General Support Services"
	CategorySafety     = "Safety & Anti-Violence"
	CategoryVeteran    = "Veteran Services"
	CategoryOther      = "Other / Uncategorized"
)

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules are tried in order; the first bucket with any keyword found as
// a substring of the normalized input wins. Matching is deliberately
// substring-based, not whole-word, so e.g. "psychiat" covers both
// "psychiatry" and "psychiatric".
var categoryRules = []categoryRule{
	{CategoryVeteran, []string{
		"veteran", "va health", "va clinic",
	}},
	{CategorySafety, []string{
		"domestic violence", "dv", "sexual assault", "intimate partner",
		"safe house", "violence", "trafficking",
	}},
	{CategoryBehavioral, []string{
		"behavioral health", "mental health", "psychiat", "counseling",
		"crisis", "hotline", "suicide", "harm reduction", "overdose",
		"substance use", "addiction", "recovery", "mat program", "peer support",
	}},
	{CategoryHealth, []string{
		"healthcare", "health care", "health center", "clinic", "medical",
		"hospital", "fqh", "fqhc", "sliding scale", "charity care",
		"vision", "dental", "women/lgbtq", "lgbtq+ health",
	}},
	{CategoryHousing, []string{
		"shelter", "housing", "supportive housing", "emergency shelter",
		"transitional", "safe haven", "overnight", "rapid rehousing",
		"tenant", "landlord", "homeownership", "home repair",
	}},
	{CategoryFood, []string{
		"food", "pantry", "soup kitchen", "meal", "meals",
		"groceries", "grocery", "clothing", "clothes",
		"basic needs", "essentials", "household goods",
		"day center", "day resource",
	}},
	{CategoryFinancial, []string{
		"benefits", "assistance program", "financial assistance",
		"cash", "income support", "tax credit", "tax help",
		"utility assistance", "utilities", "electric", "gas bill",
		"water bill", "communications discount", "lifeline",
		"digital access", "internet", "broadband",
	}},
	{CategoryEmployment, []string{
		"employment", "job", "jobs", "career", "workforce",
		"training", "job training", "vocational", "rehabilitation",
		"apprentice", "internship", "resume", "interview skills",
		"youth employment", "summer jobs", "education/employment",
		"ged", "adult education",
	}},
	{CategoryYouth, []string{
		"youth", "teen", "family", "child", "children",
		"early childhood", "family support", "parenting",
		"mentor", "drop-in", "advocacy",
		"community space", "community center",
		"culture & food access", "community services",
	}},
}

// Classify maps a raw "category of help" value to one of the ten buckets.
// It is a pure function: the input is lower-cased and trimmed, the buckets are
// tried in priority order, and an empty input short-circuits to
// CategoryOther.
func Classify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return CategoryOther
	}
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.name
			}
		}
	}
	return CategoryOther
}
