package usecase

import "strings"

// NutrientBounds are the plausible per-serving maxima for one food category.
type NutrientBounds struct {
	Calories float64
	CarbsG   float64
	SugarG   float64
	FatG     float64
	ProteinG float64
	FiberG   float64
	SodiumMg float64
}

// categoryBounds is matched in order; the first entry whose keyword is a
// substring of the lowercased category wins.
var categoryBounds = []struct {
	keywords []string
	bounds   NutrientBounds
}{
	{[]string{"beverage", "drink", "bebida"}, NutrientBounds{Calories: 350, CarbsG: 75, SugarG: 75, FatG: 10, ProteinG: 25, FiberG: 15, SodiumMg: 1500}},
	{[]string{"fruit", "fruta"}, NutrientBounds{Calories: 250, CarbsG: 65, SugarG: 55, FatG: 5, ProteinG: 6, FiberG: 15, SodiumMg: 300}},
	{[]string{"snack", "dessert", "sweet", "candy"}, NutrientBounds{Calories: 800, CarbsG: 120, SugarG: 80, FatG: 60, ProteinG: 25, FiberG: 20, SodiumMg: 1800}},
	{[]string{"vegetable", "verdura"}, NutrientBounds{Calories: 200, CarbsG: 40, SugarG: 20, FatG: 15, ProteinG: 15, FiberG: 20, SodiumMg: 1200}},
	{[]string{"dairy", "lacteo"}, NutrientBounds{Calories: 600, CarbsG: 60, SugarG: 55, FatG: 40, ProteinG: 40, FiberG: 5, SodiumMg: 1800}},
	{[]string{"protein", "meat", "fish", "egg"}, NutrientBounds{Calories: 900, CarbsG: 50, SugarG: 20, FatG: 60, ProteinG: 100, FiberG: 10, SodiumMg: 2200}},
	{[]string{"grain", "bread", "cereal", "pasta", "rice"}, NutrientBounds{Calories: 900, CarbsG: 160, SugarG: 35, FatG: 30, ProteinG: 40, FiberG: 30, SodiumMg: 2200}},
}

// defaultBounds applies to "mixed" and any category no keyword matches.
var defaultBounds = NutrientBounds{Calories: 1000, CarbsG: 160, SugarG: 120, FatG: 80, ProteinG: 100, FiberG: 30, SodiumMg: 3000}

// BoundsFor returns the bound set for a free-text category.
func BoundsFor(category string) NutrientBounds {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return defaultBounds
	}
	for _, entry := range categoryBounds {
		for _, keyword := range entry.keywords {
			if strings.Contains(c, keyword) {
				return entry.bounds
			}
		}
	}
	return defaultBounds
}

// isBeverageCategory reports whether category resolves to the beverage bounds.
func isBeverageCategory(category string) bool {
	return BoundsFor(category) == categoryBounds[0].bounds
}
