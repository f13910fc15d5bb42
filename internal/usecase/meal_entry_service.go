package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/platelens/backend/internal/domain"
)

const notesSeparator = " | "

// MealEntryService writes analysed items to meal entries.
type MealEntryService struct {
	repo domain.MealEntryRepository
}

// NewMealEntryService creates a new meal entry service
func NewMealEntryService(repo domain.MealEntryRepository) *MealEntryService {
	return &MealEntryService{repo: repo}
}

// MealContent is the analysed payload written to an entry.
type MealContent struct {
	Items    []domain.FoodItem
	Notes    string
	ImageURL *string
}

// Accumulate merges content into the aggregate row for key, creating the row
// when none exists. The row is re-read immediately before merging so that
// items written by a concurrent request are kept.
func (s *MealEntryService) Accumulate(ctx context.Context, key domain.MealKey, content MealContent) (*domain.MealEntry, error) {
	existing, err := s.repo.FindAggregate(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrEntryNotFound) {
		return nil, fmt.Errorf("load meal entry: %w", err)
	}

	if existing == nil {
		entry := &domain.MealEntry{
			ID:               uuid.NewString(),
			UserID:           key.UserID,
			MealType:         key.MealType,
			LoggedDate:       key.LoggedDate,
			FoodItems:        append([]domain.FoodItem(nil), content.Items...),
			Totals:           domain.TotalsFor(content.Items),
			Notes:            content.Notes,
			ImageURL:         content.ImageURL,
			AnalysisStatus:   domain.StatusCompleted,
			AnalysisProgress: 100,
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("create meal entry: %w", err)
		}
		log.Printf("[MEALS] Created %s entry %s for user %s on %s", key.MealType, entry.ID, key.UserID, key.LoggedDate)
		return entry, nil
	}

	existing.FoodItems = append(existing.FoodItems, content.Items...)
	existing.Totals = existing.Totals.Add(domain.TotalsFor(content.Items))
	existing.Notes = JoinNotes(existing.Notes, content.Notes)
	if content.ImageURL != nil {
		existing.ImageURL = content.ImageURL
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update meal entry: %w", err)
	}
	log.Printf("[MEALS] Appended %d items to entry %s (%d total)", len(content.Items), existing.ID, len(existing.FoodItems))
	return existing, nil
}

// CompleteTracked overwrites the tracked entry with the final analysis and
// marks it completed.
func (s *MealEntryService) CompleteTracked(ctx context.Context, entryID string, content MealContent) (*domain.MealEntry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("load tracked entry %s: %w", entryID, err)
	}

	entry.FoodItems = append([]domain.FoodItem(nil), content.Items...)
	entry.Totals = domain.TotalsFor(content.Items)
	entry.Notes = content.Notes
	if content.ImageURL != nil {
		entry.ImageURL = content.ImageURL
	}
	entry.AnalysisStatus = domain.StatusCompleted
	entry.AnalysisProgress = 100
	entry.AnalysisStage = nil

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update tracked entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetMealEntry returns one entry by id
func (s *MealEntryService) GetMealEntry(ctx context.Context, id string) (*domain.MealEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.repo.GetByID(ctx, id)
}

// JoinNotes pipe-joins the non-empty parts.
func JoinNotes(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, notesSeparator)
}
