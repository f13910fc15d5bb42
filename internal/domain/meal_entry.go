package domain

import (
	"math"
	"time"
)

// MealType is the meal slot an entry is logged under.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// Valid reports whether m is one of the known meal slots.
func (m MealType) Valid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// AnalysisStatus is the progress state of a tracked meal entry.
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusAnalyzing  AnalysisStatus = "analyzing"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// ProgressCheckpoint is one named milestone written to a tracked entry.
type ProgressCheckpoint struct {
	Status  AnalysisStatus
	Percent int
	Stage   *string
}

var (
	CheckpointAnalyzing  = ProgressCheckpoint{Status: StatusAnalyzing, Percent: 20, Stage: String("analyzing_image")}
	CheckpointProcessing = ProgressCheckpoint{Status: StatusProcessing, Percent: 70, Stage: String("processing_results")}
	CheckpointCompleted  = ProgressCheckpoint{Status: StatusCompleted, Percent: 100}
	CheckpointFailed     = ProgressCheckpoint{Status: StatusFailed, Percent: 0, Stage: String("analysis_failed")}
)

// MealTotals are the running nutrient sums of a meal entry.
type MealTotals struct {
	Calories float64 `json:"total_calories"`
	ProteinG float64 `json:"total_protein"`
	CarbsG   float64 `json:"total_carbs"`
	FatG     float64 `json:"total_fat"`
	FiberG   float64 `json:"total_fiber"`
	SugarG   float64 `json:"total_sugar"`
}

// Add returns the field-wise sum of t and o.
func (t MealTotals) Add(o MealTotals) MealTotals {
	return MealTotals{
		Calories: round1(t.Calories + o.Calories),
		ProteinG: round1(t.ProteinG + o.ProteinG),
		CarbsG:   round1(t.CarbsG + o.CarbsG),
		FatG:     round1(t.FatG + o.FatG),
		FiberG:   round1(t.FiberG + o.FiberG),
		SugarG:   round1(t.SugarG + o.SugarG),
	}
}

// TotalsFor sums the nutrition of items.
func TotalsFor(items []FoodItem) MealTotals {
	var t MealTotals
	for _, item := range items {
		t = t.Add(MealTotals{
			Calories: item.Nutrition.Calories,
			ProteinG: item.Nutrition.ProteinG,
			CarbsG:   item.Nutrition.CarbsG,
			FatG:     item.Nutrition.FatG,
			FiberG:   item.Nutrition.FiberG,
			SugarG:   item.Nutrition.SugarG,
		})
	}
	return t
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MealEntry is the persisted aggregate of everything logged for one
// user, meal slot and day.
type MealEntry struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	MealType         MealType       `json:"meal_type"`
	LoggedDate       string         `json:"logged_date"`
	FoodItems        []FoodItem     `json:"food_items"`
	Totals           MealTotals     `json:"totals"`
	Notes            string         `json:"notes"`
	ImageURL         *string        `json:"image_url"`
	AnalysisStatus   AnalysisStatus `json:"analysis_status"`
	AnalysisProgress int            `json:"analysis_progress"`
	AnalysisStage    *string        `json:"analysis_stage"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// MealKey identifies the aggregate row that repeated analyses accumulate into.
type MealKey struct {
	UserID     string
	MealType   MealType
	LoggedDate string
}
