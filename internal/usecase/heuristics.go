package usecase

import (
	"regexp"

	"github.com/platelens/backend/internal/domain"
)

// Product-family markers used when the composition database has no match
var (
	softDrinkBrandPattern = regexp.MustCompile(`(?i)\b(?:coca[\s-]?cola|coke|pepsi|fanta|sprite|7[\s-]?up|seven[\s-]?up|schweppes|mirinda|kas|trina|aquarius|nestea|fuze\s*tea|dr\.?\s*pepper|mountain\s*dew|tonic)\b`)
	dietMarkerPattern     = regexp.MustCompile(`(?i)\b(?:zero|diet|light|lite|max|sugar[\s-]?free|sin\s+az[uú]car|sin\s+azucares|0\s*%)`)
)

// nutrientHeuristic is one row of the fallback table. Rows are evaluated in
// order and the first match wins.
type nutrientHeuristic struct {
	name          string
	matches       func(text string) bool
	per100        domain.NutrientPanel
	minConfidence int
	note          string
}

var defaultHeuristics = []nutrientHeuristic{
	{
		name: "diet_soft_drink",
		matches: func(text string) bool {
			return softDrinkBrandPattern.MatchString(text) && dietMarkerPattern.MatchString(text)
		},
		per100: domain.NutrientPanel{
			Calories: domain.Float64(1),
			ProteinG: domain.Float64(0),
			CarbsG:   domain.Float64(0.1),
			FatG:     domain.Float64(0),
			FiberG:   domain.Float64(0),
			SugarG:   domain.Float64(0),
			SodiumMg: domain.Float64(10),
		},
		minConfidence: 60,
		note:          "Estimated from a typical zero-sugar soft drink profile (heuristic, not measured data)",
	},
	{
		name: "regular_soft_drink",
		matches: func(text string) bool {
			return softDrinkBrandPattern.MatchString(text) && !dietMarkerPattern.MatchString(text)
		},
		per100: domain.NutrientPanel{
			Calories: domain.Float64(42),
			ProteinG: domain.Float64(0),
			CarbsG:   domain.Float64(10.6),
			FatG:     domain.Float64(0),
			FiberG:   domain.Float64(0),
			SugarG:   domain.Float64(10.6),
			SodiumMg: domain.Float64(2),
		},
		minConfidence: 70,
		note:          "Estimated from a typical sugared soft drink profile (heuristic, not measured data)",
	},
}

// matchHeuristic returns the first table row matching text, or nil.
func matchHeuristic(table []nutrientHeuristic, text string) *nutrientHeuristic {
	for i := range table {
		if table[i].matches(text) {
			return &table[i]
		}
	}
	return nil
}
