package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/platelens/backend/internal/domain"
)

const (
	msgMethodNotAllowed = "method not allowed, use POST"
	msgInvalidBody      = "invalid request body"
	msgBodyTooLarge     = "request body too large"
	msgMissingImage     = "image_base64 is required"
	msgAnalysisFailed   = "unable to analyze image right now, please try again"
	msgInternalError    = "internal server error"
	msgEntryNotFound    = "meal entry not found"
)

// FoodAnalyzer runs the analysis pipeline
type FoodAnalyzer interface {
	Analyze(ctx context.Context, req *domain.AnalyzeRequest) (*domain.AnalyzeResponse, error)
}

// MealEntryReader loads meal entries by id
type MealEntryReader interface {
	GetMealEntry(ctx context.Context, id string) (*domain.MealEntry, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer FoodAnalyzer
	meals    MealEntryReader
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer FoodAnalyzer, meals MealEntryReader) *Handler {
	return &Handler{analyzer: analyzer, meals: meals}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "platelens-backend",
		"version": "1.0.0",
	})
}

// AnalyzeFood handles food photo analysis requests
func (h *Handler) AnalyzeFood(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMethodNotAllowed})
		return
	}

	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgBodyTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}

	resp, err := h.analyzer.Analyze(c.Request.Context(), &req)
	if err != nil {
		status, message := analysisErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ANALYZE] Request failed (%d): %v", status, err)
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMealEntry returns one meal entry so clients can poll analysis progress
func (h *Handler) GetMealEntry(c *gin.Context) {
	entry, err := h.meals.GetMealEntry(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, entry)
	case errors.Is(err, domain.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgEntryNotFound})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[MEALS] Get entry failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	}
}

// analysisErrorResponse maps pipeline errors to a status and a client-safe message
func analysisErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingImage):
		return http.StatusBadRequest, msgMissingImage
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrClassificationFailed):
		return http.StatusBadGateway, msgAnalysisFailed
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}
