package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

// Enrichment constants
const (
	enrichSkipConfidence    = 60 // items with nutrition at or above this are trusted
	lookupMinConfidence     = 80
	defaultBeverageVolumeML = 330.0
	largeBeverageVolumeML   = 500.0
)

var largeBottlePattern = regexp.MustCompile(`(?i)\b500\s*ml\b|\b50\s*cl\b|\b0[.,]5\s*l\b|\bhalf\s+liter\b|\bmedio\s+litro\b`)

// drinkCategorySlugs are category tags, language prefix removed, that mark a
// product as a drink. Umbrella tags like "plant-based-foods-and-beverages"
// are not drinks.
var drinkCategorySlugs = map[string]bool{
	"beverages": true, "drinks": true, "carbonated-drinks": true, "sodas": true,
	"soft-drinks": true, "diet-sodas": true, "colas": true, "waters": true,
	"mineral-waters": true, "spring-waters": true, "juices": true, "fruit-juices": true,
	"nectars": true, "teas": true, "iced-teas": true, "coffees": true,
	"energy-drinks": true, "plant-based-beverages": true,
	"bebidas": true, "refrescos": true, "aguas": true, "zumos": true,
}

// Enricher fills in nutrition for packaged items the classifier was unsure
// about, using the composition database or a fixed heuristic profile.
type Enricher struct {
	lookup     *CompositionLookup
	heuristics []nutrientHeuristic
}

// NewEnricher creates an enricher with the default heuristic table
func NewEnricher(lookup *CompositionLookup) *Enricher {
	return &Enricher{lookup: lookup, heuristics: defaultHeuristics}
}

// Enrich updates eligible items in place. Items are processed sequentially;
// a failed lookup leaves an item with its validated estimate.
func (e *Enricher) Enrich(ctx context.Context, items []domain.FoodItem, barcode, textHint string) {
	for i := range items {
		e.enrichItem(ctx, &items[i], barcode, textHint)
	}
}

// needsEnrichment reports whether an item is packaged and either has no
// usable nutrition or a low confidence.
func needsEnrichment(item *domain.FoodItem) bool {
	if !item.IsPackaged {
		return false
	}
	return item.Nutrition.IsEmpty() || item.Confidence < enrichSkipConfidence
}

func (e *Enricher) enrichItem(ctx context.Context, item *domain.FoodItem, barcode, textHint string) {
	if !needsEnrichment(item) {
		return
	}

	query := BuildSearchQuery(textHint, item.FoodName, item.BrandName())
	if product := e.lookup.Find(ctx, barcode, query); product != nil {
		applyProduct(item, product)
		log.Printf("[ENRICH] %q matched %q (%s)", item.FoodName, product.ProductName, product.Code)
		return
	}

	text := strings.TrimSpace(item.BrandName() + " " + item.FoodName)
	if h := matchHeuristic(e.heuristics, text); h != nil {
		applyHeuristic(item, h)
		log.Printf("[ENRICH] %q used heuristic %s", item.FoodName, h.name)
		return
	}
	log.Printf("[ENRICH] No composition data for %q; keeping model estimate", item.FoodName)
}

func applyProduct(item *domain.FoodItem, product *domain.CompositionProduct) {
	if item.BrandName() == "" {
		if brand := firstBrand(product.Brands); brand != "" {
			item.Brand = &brand
		}
	}
	if strings.TrimSpace(item.FoodName) == "" {
		item.FoodName = product.ProductName
	}
	if isDrinkProduct(product) && !isBeverageCategory(item.Category) {
		item.Category = "beverage"
	}
	if isBeverageCategory(item.Category) && item.Units.VolumeML == nil {
		volume := defaultBeverageVolumeML
		if largeBottlePattern.MatchString(item.LabelEvidence()) {
			volume = largeBeverageVolumeML
		}
		setVolume(item, volume)
	}

	scaled := product.Per100.Scale(servingScaleFactor(item.Units))
	item.Nutrition = ValidateNutrition(scaled.MergeInto(item.Nutrition), item.Category)
	item.Confidence = max(item.Confidence, lookupMinConfidence)

	source := "Nutrition from Open Food Facts"
	if product.Code != "" {
		source = fmt.Sprintf("%s (%s)", source, product.Code)
	}
	item.Notes = appendNote(item.Notes, source)
}

// isDrinkProduct checks the product's category tags, or its comma separated
// category names when it has no tags, for a drink category.
func isDrinkProduct(product *domain.CompositionProduct) bool {
	categories := product.CategoryTags
	if len(categories) == 0 {
		categories = strings.Split(product.Categories, ",")
	}
	for _, category := range categories {
		if drinkCategorySlugs[categorySlug(category)] {
			return true
		}
	}
	return false
}

// categorySlug turns "en:carbonated-drinks" or "Carbonated drinks" into "carbonated-drinks".
func categorySlug(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, rest, ok := strings.Cut(category, ":"); ok {
		category = rest
	}
	return strings.Join(strings.Fields(category), "-")
}

func applyHeuristic(item *domain.FoodItem, h *nutrientHeuristic) {
	if !isBeverageCategory(item.Category) {
		item.Category = "beverage"
	}
	if item.Units.VolumeML == nil {
		setVolume(item, defaultBeverageVolumeML)
	}

	scaled := h.per100.Scale(servingScaleFactor(item.Units))
	item.Nutrition = ValidateNutrition(scaled.MergeInto(item.Nutrition), item.Category)
	item.Confidence = max(item.Confidence, h.minConfidence)
	item.Notes = appendNote(item.Notes, h.note)
}

// servingScaleFactor converts per-100 values to the item's serving.
func servingScaleFactor(units domain.ServingUnits) float64 {
	switch {
	case units.MassG != nil && *units.MassG > 0:
		return *units.MassG / 100
	case units.VolumeML != nil && *units.VolumeML > 0:
		return *units.VolumeML / 100
	default:
		return 1
	}
}

func setVolume(item *domain.FoodItem, volume float64) {
	item.Units.VolumeML = domain.Float64(volume)
	serving := fmt.Sprintf("%.0f ml", volume)
	switch desc := strings.TrimSpace(item.ServingDescription); desc {
	case "", defaultServing:
		item.ServingDescription = serving
	default:
		item.ServingDescription = fmt.Sprintf("%s (%s)", desc, serving)
	}
}

func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func appendNote(notes, note string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return note
	}
	return notes + "; " + note
}
