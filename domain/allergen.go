package domain

import "strings"

// Option is a selectable value with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RSVPEvents lists the events a guest answers for, keyed by their JSON field.
var RSVPEvents = []Option{
	{Value: "attend_ceremony", Label: "Cerimonia"},
	{Value: "attend_lunch", Label: "Pranzo"},
}

// Allergens lists the allergens a guest can declare.
var Allergens = []Option{
	{Value: "glutine", Label: "Glutine"},
	{Value: "lattosio", Label: "Lattosio"},
	{Value: "uova", Label: "Uova"},
	{Value: "arachidi", Label: "Arachidi"},
	{Value: "frutta_a_guscio", Label: "Frutta a guscio"},
	{Value: "soia", Label: "Soia"},
	{Value: "sesamo", Label: "Sesamo"},
	{Value: "pesce", Label: "Pesce"},
	{Value: "crostacei", Label: "Crostacei"},
	{Value: "molluschi", Label: "Molluschi"},
	{Value: "senape", Label: "Senape"},
	{Value: "sedano", Label: "Sedano"},
	{Value: "solfiti", Label: "Solfiti"},
}

// IsAllergen reports whether value is a known allergen key.
func IsAllergen(value string) bool {
	for _, a := range Allergens {
		if a.Value == value {
			return true
		}
	}
	return false
}

// NormalizeAllergens trims and lowercases the values, drops unknown keys and duplicates,
// and returns them in catalogue order. The result is never nil.
func NormalizeAllergens(values []string) []string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}

	normalized := make([]string, 0, len(seen))
	for _, a := range Allergens {
		if seen[a.Value] {
			normalized = append(normalized, a.Value)
		}
	}
	return normalized
}
