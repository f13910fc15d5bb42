package domain

import "math"

// NutritionRecord is the nutrient breakdown of one food item as served.
type NutritionRecord struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// IsEmpty reports whether the energy-bearing fields are all zero.
// Fiber and sodium alone do not count as a usable estimate.
func (n NutritionRecord) IsEmpty() bool {
	return n.Calories == 0 && n.CarbsG == 0 && n.FatG == 0 && n.ProteinG == 0 && n.SugarG == 0
}

// MacroCalories returns the Atwater estimate 4*carbs + 4*protein + 9*fat.
func (n NutritionRecord) MacroCalories() float64 {
	return 4*n.CarbsG + 4*n.ProteinG + 9*n.FatG
}

// ServingUnits holds the structured quantities parsed from a serving description.
type ServingUnits struct {
	MassG    *float64 `json:"mass_g,omitempty"`
	VolumeML *float64 `json:"volume_ml,omitempty"`
	Count    *float64 `json:"count,omitempty"`
}

// FoodItem is a single detected food or beverage.
type FoodItem struct {
	FoodName           string          `json:"food_name"`
	Brand              *string         `json:"brand"`
	Category           string          `json:"category"`
	ServingDescription string          `json:"serving_description"`
	Units              ServingUnits    `json:"units"`
	Nutrition          NutritionRecord `json:"nutrition"`
	Confidence         int             `json:"confidence"`
	IsPackaged         bool            `json:"is_packaged"`
	Notes              string          `json:"notes"`
	SourceLabel        *string         `json:"source_label"`
}

// BrandName returns the brand or an empty string.
func (f FoodItem) BrandName() string {
	if f.Brand == nil {
		return ""
	}
	return *f.Brand
}

// LabelEvidence returns the label text the classifier read off the package, if any.
func (f FoodItem) LabelEvidence() string {
	if f.SourceLabel == nil {
		return ""
	}
	return *f.SourceLabel
}

// FoodAnalysis is the result of analysing one photo.
// OverallConfidence is always derived from Items.
type FoodAnalysis struct {
	Items             []FoodItem `json:"items"`
	OverallConfidence int        `json:"overall_confidence"`
	Description       string     `json:"description"`
}

// NutrientPanel is a nutrient record where each field may be absent,
// as reported by a composition database or a fixed profile.
type NutrientPanel struct {
	Calories *float64 `json:"calories,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
	FiberG   *float64 `json:"fiber_g,omitempty"`
	SugarG   *float64 `json:"sugar_g,omitempty"`
	SodiumMg *float64 `json:"sodium_mg,omitempty"`
}

// HasNutrients reports whether at least one energy-bearing value is present.
func (p NutrientPanel) HasNutrients() bool {
	return p.Calories != nil || p.ProteinG != nil || p.CarbsG != nil || p.FatG != nil || p.SugarG != nil
}

// Scale multiplies every present value by factor, rounding to one decimal
// (calories to an integer).
func (p NutrientPanel) Scale(factor float64) NutrientPanel {
	scale := func(v *float64, decimals float64) *float64 {
		if v == nil {
			return nil
		}
		unit := math.Pow(10, decimals)
		out := math.Round(*v*factor*unit) / unit
		return &out
	}
	return NutrientPanel{
		Calories: scale(p.Calories, 0),
		ProteinG: scale(p.ProteinG, 1),
		CarbsG:   scale(p.CarbsG, 1),
		FatG:     scale(p.FatG, 1),
		FiberG:   scale(p.FiberG, 1),
		SugarG:   scale(p.SugarG, 1),
		SodiumMg: scale(p.SodiumMg, 1),
	}
}

// MergeInto overwrites the fields of n that are present in the panel.
func (p NutrientPanel) MergeInto(n NutritionRecord) NutritionRecord {
	pick := func(v *float64, fallback float64) float64 {
		if v == nil {
			return fallback
		}
		return *v
	}
	return NutritionRecord{
		Calories: pick(p.Calories, n.Calories),
		ProteinG: pick(p.ProteinG, n.ProteinG),
		CarbsG:   pick(p.CarbsG, n.CarbsG),
		FatG:     pick(p.FatG, n.FatG),
		FiberG:   pick(p.FiberG, n.FiberG),
		SugarG:   pick(p.SugarG, n.SugarG),
		SodiumMg: pick(p.SodiumMg, n.SodiumMg),
	}
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
