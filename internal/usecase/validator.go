package usecase

import (
	"math"

	"github.com/platelens/backend/internal/domain"
)

// calorieDeviationLimit is the relative gap between stated and macro-derived
// calories above which the derived value replaces the stated one.
const calorieDeviationLimit = 0.25

// ValidateNutrition clamps raw into the bounds of category and reconciles
// calories against the macros. It is pure and idempotent.
func ValidateNutrition(raw domain.NutritionRecord, category string) domain.NutritionRecord {
	b := BoundsFor(category)

	n := domain.NutritionRecord{
		Calories: clamp(math.Round(finite(raw.Calories)), b.Calories),
		ProteinG: clamp(roundTenth(finite(raw.ProteinG)), b.ProteinG),
		CarbsG:   clamp(roundTenth(finite(raw.CarbsG)), b.CarbsG),
		FatG:     clamp(roundTenth(finite(raw.FatG)), b.FatG),
		FiberG:   clamp(roundTenth(finite(raw.FiberG)), b.FiberG),
		SugarG:   clamp(roundTenth(finite(raw.SugarG)), b.SugarG),
		SodiumMg: clamp(roundTenth(finite(raw.SodiumMg)), b.SodiumMg),
	}

	derived := n.MacroCalories()
	if derived <= 0 {
		return n
	}
	if n.Calories == 0 || calorieDeviation(n.Calories, derived) > calorieDeviationLimit {
		n.Calories = clamp(math.Round(derived), b.Calories)
	}
	return n
}

// calorieDeviation is |calories - derived| relative to the stated calories.
func calorieDeviation(calories, derived float64) float64 {
	if calories == 0 {
		return 0
	}
	return math.Abs(calories-derived) / calories
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func roundTenth(v float64) float64 {
	if math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10) / 10
}

// clamp limits v to [0, max].
func clamp(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Min(v, max)
}
