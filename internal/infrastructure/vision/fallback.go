package vision

import (
	"context"

	"github.com/platelens/backend/internal/domain"
)

// NoopFallback is the secondary classifier slot. No second provider is
// configured, so every call reports ErrFallbackUnavailable.
type NoopFallback struct{}

// Classify always fails with ErrFallbackUnavailable
func (NoopFallback) Classify(ctx context.Context, input domain.ClassificationInput) (*domain.FoodAnalysis, error) {
	return nil, domain.ErrFallbackUnavailable
}
