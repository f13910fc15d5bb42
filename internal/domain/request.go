package domain

// AnalyzeRequest is the body of a food photo analysis call.
type AnalyzeRequest struct {
	ImageBase64 string   `json:"image_base64"`
	Context     string   `json:"context,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	TextHint    string   `json:"text_hint,omitempty"`
	MealType    MealType `json:"meal_type,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	AutoSave    bool     `json:"auto_save,omitempty"`
	LoggedDate  string   `json:"logged_date,omitempty"`
	MealEntryID string   `json:"meal_entry_id,omitempty"`
}

// AnalyzeResponse is returned on a successful analysis.
type AnalyzeResponse struct {
	Success     bool          `json:"success"`
	Analysis    *FoodAnalysis `json:"analysis"`
	MealEntryID *string       `json:"meal_entry_id"`
	AutoSaved   bool          `json:"auto_saved"`
	ImageURL    *string       `json:"image_url"`
}

// ClassificationInput is what the vision classifier sees for one photo.
type ClassificationInput struct {
	// ImageURL is an embeddable reference: a data URI or an http(s) URL.
	ImageURL string
	Context  string
	Barcode  string
	TextHint string
}

// ImagePayload is a decoded request image.
type ImagePayload struct {
	// Data is nil when the request referenced a remote image by URL.
	Data        []byte
	ContentType string
	// URL is the embeddable reference handed to the vision model.
	URL string
}

// CompositionProduct is a product record from the food-composition database,
// with nutrients expressed per 100 g or per 100 ml. CategoryTags holds
// taxonomy tags such as "en:sodas" when the source provides them.
type CompositionProduct struct {
	Code         string        `json:"code"`
	ProductName  string        `json:"product_name"`
	Brands       string        `json:"brands"`
	Categories   string        `json:"categories"`
	CategoryTags []string      `json:"categories_tags,omitempty"`
	Quantity     string        `json:"quantity"`
	Per100       NutrientPanel `json:"per_100"`
}
