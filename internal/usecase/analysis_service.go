package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/platelens/backend/internal/domain"
)

const loggedDateLayout = "2006-01-02"

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	MaxImageBytes int
	// Now is used for the default logged date; defaults to time.Now.
	Now func() time.Time
}

// AnalysisService runs one photo through classification, enrichment,
// scoring and persistence.
type AnalysisService struct {
	classifier    domain.FoodClassifier
	fallback      domain.FoodClassifier
	enricher      *Enricher
	meals         *MealEntryService
	storage       domain.ImageStorage
	progress      domain.ProgressSink
	maxImageBytes int
	now           func() time.Time
}

// AnalysisDeps are the collaborators of the analysis service. Storage,
// Progress and Meals may be nil, which disables the matching side effect.
type AnalysisDeps struct {
	Classifier domain.FoodClassifier
	Fallback   domain.FoodClassifier
	Enricher   *Enricher
	Meals      *MealEntryService
	Storage    domain.ImageStorage
	Progress   domain.ProgressSink
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(deps AnalysisDeps, config AnalysisServiceConfig) *AnalysisService {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &AnalysisService{
		classifier:    deps.Classifier,
		fallback:      deps.Fallback,
		enricher:      deps.Enricher,
		meals:         deps.Meals,
		storage:       deps.Storage,
		progress:      deps.Progress,
		maxImageBytes: config.MaxImageBytes,
		now:           now,
	}
}

// Analyze handles one analysis request.
// Flow: validate -> upload image -> analyzing -> classify (fallback) ->
// processing -> enrich -> validate -> score -> persist -> completed
func (s *AnalysisService) Analyze(ctx context.Context, req *domain.AnalyzeRequest) (resp *domain.AnalyzeResponse, err error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, domain.ErrMissingImage
	}
	loggedDate, err := s.checkRequest(req)
	if err != nil {
		return nil, err
	}
	image, err := ParseImagePayload(req.ImageBase64, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	entryID := strings.TrimSpace(req.MealEntryID)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ANALYZE] Recovered panic: %v", r)
			err = fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, r)
			resp = nil
		}
		if err != nil && !errors.Is(err, domain.ErrClassificationFailed) {
			s.report(ctx, entryID, domain.CheckpointFailed)
		}
	}()

	imageURL := s.uploadImage(ctx, req.UserID, image)

	s.report(ctx, entryID, domain.CheckpointAnalyzing)
	analysis, err := s.classify(ctx, domain.ClassificationInput{
		ImageURL: image.URL,
		Context:  req.Context,
		Barcode:  req.Barcode,
		TextHint: req.TextHint,
	})
	if err != nil {
		s.report(ctx, entryID, domain.CheckpointFailed)
		return nil, err
	}
	s.report(ctx, entryID, domain.CheckpointProcessing)

	if s.enricher != nil {
		s.enricher.Enrich(ctx, analysis.Items, req.Barcode, req.TextHint)
	}
	for i := range analysis.Items {
		item := &analysis.Items[i]
		item.Nutrition = ValidateNutrition(item.Nutrition, item.Category)
		item.Confidence = clampConfidence(item.Confidence)
	}
	analysis.OverallConfidence = OverallConfidence(analysis.Items)

	resp = &domain.AnalyzeResponse{
		Success:  true,
		Analysis: analysis,
		ImageURL: imageURL,
	}

	content := MealContent{
		Items:    analysis.Items,
		Notes:    mealNotes(analysis.Items, req.Context),
		ImageURL: imageURL,
	}
	switch {
	case entryID != "":
		resp.MealEntryID = &entryID
		saved := s.completeTracked(ctx, entryID, content)
		resp.AutoSaved = req.AutoSave && saved
	case req.AutoSave && s.meals != nil:
		key := domain.MealKey{UserID: req.UserID, MealType: req.MealType, LoggedDate: loggedDate}
		entry, err := s.meals.Accumulate(ctx, key, content)
		if err != nil {
			log.Printf("[ANALYZE] Auto-save failed for user %s: %v", req.UserID, err)
			break
		}
		resp.MealEntryID = &entry.ID
		resp.AutoSaved = true
	}

	log.Printf("[ANALYZE] %d items, overall confidence %d", len(analysis.Items), analysis.OverallConfidence)
	return resp, nil
}

// checkRequest validates the optional fields and returns the logged date.
func (s *AnalysisService) checkRequest(req *domain.AnalyzeRequest) (string, error) {
	if req.MealType != "" && !req.MealType.Valid() {
		return "", fmt.Errorf("%w: meal_type must be breakfast, lunch, dinner or snack", domain.ErrInvalidRequest)
	}
	if req.AutoSave && (strings.TrimSpace(req.UserID) == "" || req.MealType == "") {
		return "", fmt.Errorf("%w: auto_save requires user_id and meal_type", domain.ErrInvalidRequest)
	}
	if req.LoggedDate == "" {
		return s.now().UTC().Format(loggedDateLayout), nil
	}
	if _, err := time.Parse(loggedDateLayout, req.LoggedDate); err != nil {
		return "", fmt.Errorf("%w: logged_date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}
	return req.LoggedDate, nil
}

// classify tries the primary classifier, then the fallback.
func (s *AnalysisService) classify(ctx context.Context, input domain.ClassificationInput) (*domain.FoodAnalysis, error) {
	analysis, err := s.classifier.Classify(ctx, input)
	if err == nil {
		return analysis, nil
	}
	log.Printf("[ANALYZE] Primary classifier failed: %v", err)

	if s.fallback == nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}
	analysis, fallbackErr := s.fallback.Classify(ctx, input)
	if fallbackErr != nil {
		log.Printf("[ANALYZE] Fallback classifier failed: %v", fallbackErr)
		return nil, fmt.Errorf("%w: primary: %v; fallback: %v", domain.ErrClassificationFailed, err, fallbackErr)
	}
	return analysis, nil
}

// uploadImage stores the photo under the user's namespace. Failures yield a nil URL.
func (s *AnalysisService) uploadImage(ctx context.Context, userID string, image *domain.ImagePayload) *string {
	if s.storage == nil || strings.TrimSpace(userID) == "" || len(image.Data) == 0 {
		return nil
	}
	url, err := s.storage.Upload(ctx, userID, image)
	if err != nil {
		log.Printf("[STORAGE] Upload failed for user %s, continuing without image: %v", userID, err)
		return nil
	}
	return &url
}

// completeTracked overwrites the tracked entry, falling back to a
// status-only write so observers still see completion.
func (s *AnalysisService) completeTracked(ctx context.Context, entryID string, content MealContent) bool {
	if s.meals != nil {
		_, err := s.meals.CompleteTracked(ctx, entryID, content)
		if err == nil {
			return true
		}
		log.Printf("[ANALYZE] Tracked entry overwrite failed, writing status only: %v", err)
	}
	s.report(ctx, entryID, domain.CheckpointCompleted)
	return false
}

// report writes a progress checkpoint; failures are logged and ignored.
func (s *AnalysisService) report(ctx context.Context, entryID string, checkpoint domain.ProgressCheckpoint) {
	if s.progress == nil || entryID == "" {
		return
	}
	if err := s.progress.Report(ctx, entryID, checkpoint); err != nil {
		log.Printf("[PROGRESS] %s -> %s failed: %v", entryID, checkpoint.Status, err)
	}
}

// mealNotes joins item notes and the request context.
func mealNotes(items []domain.FoodItem, requestContext string) string {
	parts := make([]string, 0, len(items)+1)
	for _, item := range items {
		parts = append(parts, item.Notes)
	}
	parts = append(parts, requestContext)
	return JoinNotes(parts...)
}
