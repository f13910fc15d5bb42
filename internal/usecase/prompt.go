package usecase

import (
	"fmt"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

const analysisPromptTemplate = `You are a nutrition analyst. Identify every food or beverage in the photo (at most %d items) and estimate its nutrition for the portion shown.

Reply with ONLY one JSON object, no prose, in exactly this shape:
{
  "description": "short description of the whole photo",
  "items": [
    {
      "food_name": "string",
      "brand": "string or null",
      "category": "fruit | vegetable | grain | protein | dairy | beverage | snack | dessert | mixed",
      "serving_description": "e.g. 1 can (330 ml), 2 slices, 150 g",
      "nutrition": {"calories": 0, "protein_g": 0, "carbs_g": 0, "fat_g": 0, "fiber_g": 0, "sugar_g": 0, "sodium_mg": 0},
      "confidence": 0,
      "is_packaged": false,
      "notes": "string",
      "source_label": "text read from the package label, or null"
    }
  ]
}

Rules:
- confidence is an integer from 10 to 100.
- Keep calories consistent with the macros: 4*carbs_g + 4*protein_g + 9*fat_g must be within 25%% of calories.
- If a packaged product is visible but its nutrition panel is not, still report it: read brand and flavor from the front of the package, set is_packaged to true and leave every nutrition value at 0.
- Put any label text you can read (brand, flavor, volume, weight) in source_label.
- Never return an empty items list when food or drink is visible.`

// BuildAnalysisPrompt renders the instruction prompt for one photo.
func BuildAnalysisPrompt(input domain.ClassificationInput) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(analysisPromptTemplate, maxAnalysisItems))

	if hint := strings.TrimSpace(input.TextHint); hint != "" {
		b.WriteString("\n\nText visible on the package (may be partial): ")
		b.WriteString(hint)
	}
	if barcode := strings.TrimSpace(input.Barcode); barcode != "" {
		b.WriteString("\n\nThe product barcode is ")
		b.WriteString(barcode)
		b.WriteString("; treat the matching item as packaged.")
	}
	if ctx := strings.TrimSpace(input.Context); ctx != "" {
		b.WriteString("\n\nAdditional context from the user: ")
		b.WriteString(ctx)
	}
	return b.String()
}
