package openfoodfacts

import (
	"math"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

// Unit conversions for Open Food Facts nutriments
const (
	kilojoulesPerKcal = 4.184
	sodiumPerSalt     = 1 / 2.5
	mgPerGram         = 1000.0
)

// MapToProduct converts an Open Food Facts product into our domain model
func MapToProduct(p *Product) *domain.CompositionProduct {
	categories := p.Categories
	if categories == "" && len(p.CategoriesTags) > 0 {
		categories = strings.Join(p.CategoriesTags, ",")
	}

	var tags []string
	for _, tag := range p.CategoriesTags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	return &domain.CompositionProduct{
		Code:         p.Code,
		ProductName:  strings.TrimSpace(p.ProductName),
		Brands:       strings.TrimSpace(p.Brands),
		Categories:   categories,
		CategoryTags: tags,
		Quantity:     strings.TrimSpace(p.Quantity),
		Per100:       extractPanel(p.Nutriments),
	}
}

// extractPanel reads the per-100 values, converting kJ to kcal and sodium/salt grams to mg.
// Calories keep one decimal so small values survive scaling to the serving.
func extractPanel(n Nutriments) domain.NutrientPanel {
	panel := domain.NutrientPanel{
		Calories: roundedValue(n.EnergyKcal100g),
		ProteinG: value(n.Proteins100g),
		CarbsG:   value(n.Carbohydrates100g),
		FatG:     value(n.Fat100g),
		FiberG:   value(n.Fiber100g),
		SugarG:   value(n.Sugars100g),
	}

	if panel.Calories == nil {
		kj := value(n.EnergyKJ100g)
		if kj == nil {
			kj = value(n.Energy100g)
		}
		if kj != nil {
			panel.Calories = domain.Float64(roundTenth(*kj / kilojoulesPerKcal))
		}
	}

	if sodium := value(n.Sodium100g); sodium != nil {
		panel.SodiumMg = domain.Float64(roundTenth(*sodium * mgPerGram))
	} else if salt := value(n.Salt100g); salt != nil {
		panel.SodiumMg = domain.Float64(roundTenth(*salt * sodiumPerSalt * mgPerGram))
	}

	return panel
}

func value(f *flexFloat) *float64 {
	if f == nil || !f.Valid || f.Value < 0 {
		return nil
	}
	v := f.Value
	return &v
}

func roundedValue(f *flexFloat) *float64 {
	if v := value(f); v != nil {
		return domain.Float64(roundTenth(*v))
	}
	return nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
