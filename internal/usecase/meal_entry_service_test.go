package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/platelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lunchKey = domain.MealKey{UserID: "user-1", MealType: domain.MealTypeLunch, LoggedDate: "2025-03-14"}

func itemWith(name string, n domain.NutritionRecord) domain.FoodItem {
	return domain.FoodItem{FoodName: name, Category: "mixed", Nutrition: n, Confidence: 80}
}

func TestMealEntryService_AccumulateCreatesEntry(t *testing.T) {
	repo := NewMockMealEntryRepository()
	service := NewMealEntryService(repo)
	url := "https://cdn.example.com/user-1/a.jpg"

	entry, err := service.Accumulate(context.Background(), lunchKey, MealContent{
		Items:    []domain.FoodItem{itemWith("rice", domain.NutritionRecord{Calories: 200, CarbsG: 45, ProteinG: 4})},
		Notes:    "first plate",
		ImageURL: &url,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, domain.StatusCompleted, entry.AnalysisStatus)
	assert.Equal(t, 100, entry.AnalysisProgress)
	assert.Equal(t, 200.0, entry.Totals.Calories)
	assert.Equal(t, "first plate", entry.Notes)
	assert.Equal(t, &url, entry.ImageURL)
	assert.Contains(t, repo.entries, entry.ID)
}

func TestMealEntryService_AccumulateAppends(t *testing.T) {
	repo := NewMockMealEntryRepository()
	service := NewMealEntryService(repo)
	ctx := context.Background()

	first, err := service.Accumulate(ctx, lunchKey, MealContent{
		Items: []domain.FoodItem{itemWith("rice", domain.NutritionRecord{Calories: 200, CarbsG: 45, ProteinG: 4, FatG: 0.4})},
		Notes: "first plate",
	})
	require.NoError(t, err)

	second, err := service.Accumulate(ctx, lunchKey, MealContent{
		Items: []domain.FoodItem{
			itemWith("chicken", domain.NutritionRecord{Calories: 165, ProteinG: 31, FatG: 3.6}),
			itemWith("salad", domain.NutritionRecord{Calories: 20, CarbsG: 4, FiberG: 1.5}),
		},
		Notes: "second plate",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.entries, 1)
	stored := repo.entries[first.ID]
	require.Len(t, stored.FoodItems, 3)
	assert.Equal(t, []string{"rice", "chicken", "salad"}, []string{stored.FoodItems[0].FoodName, stored.FoodItems[1].FoodName, stored.FoodItems[2].FoodName})
	assert.Equal(t, domain.MealTotals{Calories: 385, ProteinG: 35, CarbsG: 49, FatG: 4, FiberG: 1.5}, stored.Totals)
	assert.Equal(t, "first plate | second plate", stored.Notes)
}

func TestMealEntryService_AccumulateSkipsInFlightRows(t *testing.T) {
	repo := NewMockMealEntryRepository()
	repo.entries["tracked"] = &domain.MealEntry{
		ID: "tracked", UserID: lunchKey.UserID, MealType: lunchKey.MealType, LoggedDate: lunchKey.LoggedDate,
		AnalysisStatus: domain.StatusAnalyzing, AnalysisProgress: 20,
	}
	service := NewMealEntryService(repo)

	entry, err := service.Accumulate(context.Background(), lunchKey, MealContent{
		Items: []domain.FoodItem{itemWith("apple", domain.NutritionRecord{Calories: 95, CarbsG: 25})},
	})
	require.NoError(t, err)

	assert.NotEqual(t, "tracked", entry.ID)
	assert.Empty(t, repo.entries["tracked"].FoodItems)
}

func TestMealEntryService_AccumulateSkipsFailedRows(t *testing.T) {
	repo := NewMockMealEntryRepository()
	repo.entries["tracked-failed"] = &domain.MealEntry{
		ID: "tracked-failed", UserID: lunchKey.UserID, MealType: lunchKey.MealType, LoggedDate: lunchKey.LoggedDate,
		AnalysisStatus: domain.StatusFailed,
	}
	service := NewMealEntryService(repo)

	entry, err := service.Accumulate(context.Background(), lunchKey, MealContent{
		Items: []domain.FoodItem{itemWith("banana", domain.NutritionRecord{Calories: 105, CarbsG: 27})},
	})
	require.NoError(t, err)

	assert.NotEqual(t, "tracked-failed", entry.ID)
	assert.Equal(t, domain.StatusCompleted, entry.AnalysisStatus)
	assert.Equal(t, domain.StatusFailed, repo.entries["tracked-failed"].AnalysisStatus)
	assert.Empty(t, repo.entries["tracked-failed"].FoodItems)
}

func TestMealEntryService_AccumulateErrors(t *testing.T) {
	content := MealContent{Items: []domain.FoodItem{itemWith("apple", domain.NutritionRecord{Calories: 95})}}

	t.Run("lookup failure", func(t *testing.T) {
		repo := NewMockMealEntryRepository()
		repo.findError = errors.New("connection refused")

		_, err := NewMealEntryService(repo).Accumulate(context.Background(), lunchKey, content)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load meal entry")
	})

	t.Run("create failure", func(t *testing.T) {
		repo := NewMockMealEntryRepository()
		repo.createError = errors.New("disk full")

		_, err := NewMealEntryService(repo).Accumulate(context.Background(), lunchKey, content)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create meal entry")
	})
}

func TestMealEntryService_CompleteTrackedOverwrites(t *testing.T) {
	repo := NewMockMealEntryRepository()
	oldURL := "https://cdn.example.com/user-1/old.jpg"
	stage := "processing_results"
	repo.entries["entry-1"] = &domain.MealEntry{
		ID:               "entry-1",
		UserID:           "user-1",
		MealType:         domain.MealTypeDinner,
		LoggedDate:       "2025-03-14",
		FoodItems:        []domain.FoodItem{itemWith("placeholder", domain.NutritionRecord{Calories: 500})},
		Totals:           domain.MealTotals{Calories: 500},
		Notes:            "old note",
		ImageURL:         &oldURL,
		AnalysisStatus:   domain.StatusProcessing,
		AnalysisProgress: 70,
		AnalysisStage:    &stage,
	}
	service := NewMealEntryService(repo)

	entry, err := service.CompleteTracked(context.Background(), "entry-1", MealContent{
		Items: []domain.FoodItem{itemWith("pizza slice", domain.NutritionRecord{Calories: 285, CarbsG: 36, ProteinG: 12, FatG: 10})},
		Notes: "thin crust",
	})
	require.NoError(t, err)

	assert.Len(t, entry.FoodItems, 1)
	assert.Equal(t, "pizza slice", entry.FoodItems[0].FoodName)
	assert.Equal(t, 285.0, entry.Totals.Calories)
	assert.Equal(t, "thin crust", entry.Notes)
	assert.Equal(t, &oldURL, entry.ImageURL)
	assert.Equal(t, domain.StatusCompleted, entry.AnalysisStatus)
	assert.Equal(t, 100, entry.AnalysisProgress)
	assert.Nil(t, entry.AnalysisStage)
	assert.Equal(t, domain.StatusCompleted, repo.entries["entry-1"].AnalysisStatus)
}

func TestMealEntryService_CompleteTrackedUnknownEntry(t *testing.T) {
	service := NewMealEntryService(NewMockMealEntryRepository())

	_, err := service.CompleteTracked(context.Background(), "missing", MealContent{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEntryNotFound))
}

func TestMealEntryService_GetMealEntry(t *testing.T) {
	repo := NewMockMealEntryRepository()
	repo.entries["entry-1"] = &domain.MealEntry{ID: "entry-1", AnalysisStatus: domain.StatusPending}
	service := NewMealEntryService(repo)

	entry, err := service.GetMealEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.AnalysisStatus)

	_, err = service.GetMealEntry(context.Background(), " ")
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	_, err = service.GetMealEntry(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrEntryNotFound))
}

func TestJoinNotes(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"none", nil, ""},
		{"single", []string{"a"}, "a"},
		{"skips blanks", []string{"", "a", "  ", "b"}, "a | b"},
		{"trims", []string{" a ", "b "}, "a | b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinNotes(tt.parts...))
		})
	}
}
