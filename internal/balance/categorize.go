package balance

import "strings"

// CategoryOther is the catch-all bucket for descriptions no keyword
// matches. Categorization is best-effort display sugar, never a source
// of truth.
const CategoryOther = "Other"

// categoryKeywords maps a category to the lower-cased substrings that
// select it. First match wins in the order listed below.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"Food & Drink", []string{"restaurant", "dinner", "lunch", "breakfast", "pizza", "coffee", "cafe", "bar", "beer", "takeout", "grocery", "groceries"}},
	{"Travel", []string{"flight", "hotel", "uber", "taxi", "cab", "train", "bus", "fuel", "gas", "parking"}},
	{"Housing", []string{"rent", "electricity", "electric", "water bill", "internet", "wifi", "utilities", "maintenance"}},
	{"Entertainment", []string{"movie", "cinema", "concert", "netflix", "spotify", "game", "tickets"}},
	{"Shopping", []string{"amazon", "clothes", "shopping", "furniture", "electronics"}},
}

// Categorize buckets an expense description by keyword. Matching is
// case-insensitive substring search; unmatched descriptions land in
// CategoryOther.
func Categorize(description string) string {
	lowered := strings.ToLower(description)
	for _, category := range categoryKeywords {
		for _, keyword := range category.keywords {
			if strings.Contains(lowered, keyword) {
				return category.name
			}
		}
	}
	return CategoryOther
}
