package domain

import (
	"context"
)

// VisionModel sends one prompt plus one image to a multimodal model and
// returns its raw text answer.
type VisionModel interface {
	Complete(ctx context.Context, prompt, imageURL string) (string, error)
}

// FoodClassifier turns a photo into a structured, validated analysis.
type FoodClassifier interface {
	Classify(ctx context.Context, input ClassificationInput) (*FoodAnalysis, error)
}

// CompositionClient defines the interface for the food-composition database
type CompositionClient interface {
	GetProductByBarcode(ctx context.Context, barcode string) (*CompositionProduct, error)
	SearchProducts(ctx context.Context, query string) ([]CompositionProduct, error)
}

// ProductCache caches composition lookups. Get returns ErrCacheMiss when the
// key is unknown and ErrProductNotFound when a previous lookup found nothing.
type ProductCache interface {
	Get(ctx context.Context, key string) (*CompositionProduct, error)
	Set(ctx context.Context, key string, product *CompositionProduct) error
	SetNotFound(ctx context.Context, key string) error
}

// ImageStorage uploads meal photos and returns a URL the client can load.
type ImageStorage interface {
	Upload(ctx context.Context, userID string, image *ImagePayload) (string, error)
}

// MealEntryRepository defines persistence for meal entries
type MealEntryRepository interface {
	GetByID(ctx context.Context, id string) (*MealEntry, error)
	// FindAggregate returns the settled aggregate row for key, skipping rows
	// whose analysis is still in flight.
	FindAggregate(ctx context.Context, key MealKey) (*MealEntry, error)
	Create(ctx context.Context, entry *MealEntry) error
	Update(ctx context.Context, entry *MealEntry) error
}

// ProgressSink receives progress checkpoints for a tracked meal entry.
type ProgressSink interface {
	Report(ctx context.Context, entryID string, checkpoint ProgressCheckpoint) error
}
