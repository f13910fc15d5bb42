package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

const (
	maxAnalysisItems = 5
	defaultCategory  = "mixed"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSONObject pulls the JSON object out of a model response that may
// wrap it in a fenced code block or surround it with prose.
func ExtractJSONObject(text string) (string, error) {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil && json.Valid([]byte(m[1])) {
		return m[1], nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no JSON object in model response", domain.ErrMalformedClassifierOutput)
}

// ParseFoodAnalysis converts a raw model response into a validated analysis.
// Every item is normalized, validated and confidence-scored.
func ParseFoodAnalysis(text string) (*domain.FoodAnalysis, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedClassifierOutput, err)
	}

	rawItems, err := collectRawItems(doc)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return nil, domain.ErrNoItemsFound
	}
	if len(rawItems) > maxAnalysisItems {
		rawItems = rawItems[:maxAnalysisItems]
	}

	items := make([]domain.FoodItem, 0, len(rawItems))
	for i, fields := range rawItems {
		parsed, err := parseRawItem(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", domain.ErrMalformedClassifierOutput, i, err)
		}
		items = append(items, parsed.toFoodItem())
	}

	description, err := optionalString(doc, "description")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedClassifierOutput, err)
	}

	return &domain.FoodAnalysis{
		Items:             items,
		OverallConfidence: OverallConfidence(items),
		Description:       description,
	}, nil
}

// collectRawItems accepts either {"items": [...]} or a bare single-item object.
func collectRawItems(doc map[string]interface{}) ([]map[string]interface{}, error) {
	if value, ok := doc["items"]; ok && value != nil {
		list, ok := value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: items is %T, want array", domain.ErrMalformedClassifierOutput, value)
		}
		out := make([]map[string]interface{}, 0, len(list))
		for i, entry := range list {
			fields, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T, want object", domain.ErrMalformedClassifierOutput, i, entry)
			}
			out = append(out, fields)
		}
		return out, nil
	}
	if _, ok := doc["food_name"]; ok {
		return []map[string]interface{}{doc}, nil
	}
	return nil, nil
}

// rawItem is a classifier item whose field types have been checked.
type rawItem struct {
	foodName    string
	brand       string
	category    string
	serving     string
	nutrition   domain.NutritionRecord
	confidence  float64
	isPackaged  bool
	notes       string
	sourceLabel string
}

func parseRawItem(fields map[string]interface{}) (*rawItem, error) {
	var (
		item rawItem
		err  error
	)
	if item.foodName, err = optionalString(fields, "food_name"); err != nil {
		return nil, err
	}
	item.foodName = strings.TrimSpace(item.foodName)
	if item.foodName == "" {
		return nil, fmt.Errorf("food_name is required")
	}
	if item.brand, err = optionalString(fields, "brand"); err != nil {
		return nil, err
	}
	if item.category, err = optionalString(fields, "category"); err != nil {
		return nil, err
	}
	if item.serving, err = optionalString(fields, "serving_description"); err != nil {
		return nil, err
	}
	if item.notes, err = optionalString(fields, "notes"); err != nil {
		return nil, err
	}
	if item.sourceLabel, err = optionalString(fields, "source_label"); err != nil {
		return nil, err
	}
	if item.isPackaged, err = optionalBool(fields, "is_packaged"); err != nil {
		return nil, err
	}

	confidence, err := optionalNumber(fields, "confidence")
	if err != nil {
		return nil, err
	}
	if confidence == nil {
		item.confidence = defaultReportedConfidence
	} else {
		item.confidence = *confidence
	}

	if item.nutrition, err = parseNutrition(fields["nutrition"]); err != nil {
		return nil, err
	}
	return &item, nil
}

func parseNutrition(value interface{}) (domain.NutritionRecord, error) {
	var n domain.NutritionRecord
	if value == nil {
		return n, nil
	}
	fields, ok := value.(map[string]interface{})
	if !ok {
		return n, fmt.Errorf("nutrition is %T, want object", value)
	}

	targets := []struct {
		key string
		dst *float64
	}{
		{"calories", &n.Calories},
		{"protein_g", &n.ProteinG},
		{"carbs_g", &n.CarbsG},
		{"fat_g", &n.FatG},
		{"fiber_g", &n.FiberG},
		{"sugar_g", &n.SugarG},
		{"sodium_mg", &n.SodiumMg},
	}
	for _, t := range targets {
		v, err := optionalNumber(fields, t.key)
		if err != nil {
			return n, err
		}
		if v != nil {
			*t.dst = *v
		}
	}
	return n, nil
}

func (r *rawItem) toFoodItem() domain.FoodItem {
	category := strings.ToLower(strings.TrimSpace(r.category))
	if category == "" {
		category = defaultCategory
	}
	serving := NormalizeServingSize(r.serving)
	nutrition := ValidateNutrition(r.nutrition, category)

	return domain.FoodItem{
		FoodName:           r.foodName,
		Brand:              domain.String(strings.TrimSpace(r.brand)),
		Category:           category,
		ServingDescription: serving.Serving,
		Units:              serving.Units,
		Nutrition:          nutrition,
		Confidence:         ItemConfidence(r.confidence, nutrition, r.isPackaged, r.sourceLabel),
		IsPackaged:         r.isPackaged,
		Notes:              strings.TrimSpace(r.notes),
		SourceLabel:        domain.String(strings.TrimSpace(r.sourceLabel)),
	}
}

func optionalString(fields map[string]interface{}, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%s is %T, want string", key, v)
	}
}

func optionalBool(fields map[string]interface{}, key string) (bool, error) {
	switch v := fields[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s is %q, want boolean", key, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s is %T, want boolean", key, v)
	}
}

// optionalNumber accepts JSON numbers and numeric strings such as "120" or "12.5 g".
func optionalNumber(fields map[string]interface{}, key string) (*float64, error) {
	switch v := fields[key].(type) {
	case nil:
		return nil, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s is not finite", key)
		}
		return &v, nil
	case string:
		m := leadingNumberPattern.FindString(strings.TrimSpace(v))
		if m == "" {
			return nil, fmt.Errorf("%s is %q, want number", key, v)
		}
		f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%s is %q, want number", key, v)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("%s is %T, want number", key, v)
	}
}

var leadingNumberPattern = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?`)
