package openfoodfacts

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ProductResponse is the body of GET /api/v2/product/{code}.json
type ProductResponse struct {
	Code          string   `json:"code"`
	Status        int      `json:"status"`
	StatusVerbose string   `json:"status_verbose"`
	Product       *Product `json:"product"`
}

// SearchResponse is the body of GET /cgi/search.pl?json=1
type SearchResponse struct {
	Products []Product `json:"products"`
}

// Product is one Open Food Facts product record
type Product struct {
	Code             string     `json:"code"`
	ProductName      string     `json:"product_name"`
	Brands           string     `json:"brands"`
	Categories       string     `json:"categories"`
	CategoriesTags   []string   `json:"categories_tags"`
	Quantity         string     `json:"quantity"`
	NutritionDataPer string     `json:"nutrition_data_per"`
	Nutriments       Nutriments `json:"nutriments"`
}

// Nutriments holds the per-100 values. Open Food Facts serves these as
// numbers or numeric strings depending on the product.
type Nutriments struct {
	EnergyKcal100g    *flexFloat `json:"energy-kcal_100g"`
	EnergyKJ100g      *flexFloat `json:"energy-kj_100g"`
	Energy100g        *flexFloat `json:"energy_100g"` // kJ
	Proteins100g      *flexFloat `json:"proteins_100g"`
	Carbohydrates100g *flexFloat `json:"carbohydrates_100g"`
	Fat100g           *flexFloat `json:"fat_100g"`
	Fiber100g         *flexFloat `json:"fiber_100g"`
	Sugars100g        *flexFloat `json:"sugars_100g"`
	Sodium100g        *flexFloat `json:"sodium_100g"` // grams
	Salt100g          *flexFloat `json:"salt_100g"`   // grams
}

// flexFloat decodes a JSON number, a numeric string, or "" (treated as absent by the mapper).
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f.Value, f.Valid = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value, f.Valid = v, true
	return nil
}

func (f flexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
