package constants

import (
	"strings"
)

type Category string

const (
	Groceries      Category = "Groceries"
	DiningOut      Category = "DiningOut"
	Transport      Category = "Transport"
	Housing        Category = "Housing"
	Utilities      Category = "Utilities"
	Entertainment  Category = "Entertainment"
	Healthcare     Category = "Healthcare"
	Shopping       Category = "Shopping"
	Income         Category = "Income"
	Transfers      Category = "Transfers"
	FeesAndCharges Category = "FeesAndCharges"
	Other          Category = "Other"
)

var allCategories = []Category{
	Groceries,
	DiningOut,
	Transport,
	Housing,
	Utilities,
	Entertainment,
	Healthcare,
	Shopping,
	Income,
	Transfers,
	FeesAndCharges,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form category label to the fixed vocabulary.
// The boolean reports whether the label resolved to a known category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"supermarket":    Groceries,
		"food":           Groceries,
		"restaurant":     DiningOut,
		"dining":         DiningOut,
		"coffee":         DiningOut,
		"fuel":           Transport,
		"taxi":           Transport,
		"uber":           Transport,
		"public transit": Transport,
		"rent":           Housing,
		"mortgage":       Housing,
		"electricity":    Utilities,
		"internet":       Utilities,
		"phone":          Utilities,
		"salary":         Income,
		"payroll":        Income,
		"wire transfer":  Transfers,
		"transfer":       Transfers,
		"bank fee":       FeesAndCharges,
		"atm fee":        FeesAndCharges,
		"commission":     FeesAndCharges,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
