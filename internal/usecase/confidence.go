package usecase

import (
	"math"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

// Confidence scoring constants
const (
	minConfidence             = 10
	maxConfidence             = 100
	defaultReportedConfidence = 50

	scoreDeviationLimit   = 0.20 // checked against final values, after validation
	deviationPenalty      = 15
	labelEvidenceBonus    = 10
	labelEvidenceMinChars = 20
	multiItemPenalty      = 3 // per item beyond the second
)

// ItemConfidence adjusts the model-reported confidence for one validated item.
func ItemConfidence(reported float64, nutrition domain.NutritionRecord, isPackaged bool, labelEvidence string) int {
	if math.IsNaN(reported) {
		reported = defaultReportedConfidence
	}
	score := int(math.Round(math.Max(minConfidence, math.Min(maxConfidence, reported))))

	derived := nutrition.MacroCalories()
	if derived > 0 && calorieDeviation(nutrition.Calories, derived) > scoreDeviationLimit {
		score -= deviationPenalty
	}
	if isPackaged && len(strings.TrimSpace(labelEvidence)) > labelEvidenceMinChars {
		score += labelEvidenceBonus
	}
	return clampConfidence(score)
}

// OverallConfidence is the mean item confidence less a penalty for every
// item beyond the second.
func OverallConfidence(items []domain.FoodItem) int {
	if len(items) == 0 {
		return minConfidence
	}
	total := 0.0
	for _, item := range items {
		total += float64(item.Confidence)
	}
	mean := total / float64(len(items))
	penalty := float64(max(0, len(items)-2) * multiItemPenalty)
	return clampConfidence(int(math.Round(mean - penalty)))
}

func clampConfidence(v int) int {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}
