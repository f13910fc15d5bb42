package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/platelens/backend/internal/domain"
)

// VisionClassifier asks a multimodal model about a photo and turns the answer
// into a validated FoodAnalysis.
type VisionClassifier struct {
	model domain.VisionModel
	debug bool
}

// NewVisionClassifier creates a classifier backed by model
func NewVisionClassifier(model domain.VisionModel, debug bool) *VisionClassifier {
	return &VisionClassifier{model: model, debug: debug}
}

// Classify implements domain.FoodClassifier
func (c *VisionClassifier) Classify(ctx context.Context, input domain.ClassificationInput) (*domain.FoodAnalysis, error) {
	prompt := BuildAnalysisPrompt(input)

	text, err := c.model.Complete(ctx, prompt, input.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}
	if c.debug {
		log.Printf("[VISION] Raw model response (%d bytes): %s", len(text), text)
	}

	analysis, err := ParseFoodAnalysis(text)
	if err != nil {
		log.Printf("[VISION] Could not parse model response: %v", err)
		return nil, err
	}
	return analysis, nil
}
