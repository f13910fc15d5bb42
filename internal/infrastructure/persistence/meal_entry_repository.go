package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platelens/backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// mealEntryRecord is the meal_entries row
type mealEntryRecord struct {
	ID               string                               `gorm:"primaryKey;size:36"`
	UserID           string                               `gorm:"size:64;not null;index:idx_meal_entries_key"`
	MealType         string                               `gorm:"size:16;not null;index:idx_meal_entries_key"`
	LoggedDate       string                               `gorm:"size:10;not null;index:idx_meal_entries_key"`
	FoodItems        datatypes.JSONSlice[domain.FoodItem] `gorm:"not null"`
	TotalCalories    float64
	TotalProtein     float64
	TotalCarbs       float64
	TotalFat         float64
	TotalFiber       float64
	TotalSugar       float64
	Notes            string
	ImageURL         *string
	AnalysisStatus   string `gorm:"size:16;not null;default:pending"`
	AnalysisProgress int    `gorm:"not null;default:0"`
	AnalysisStage    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (mealEntryRecord) TableName() string {
	return "meal_entries"
}

// MealEntryRepository stores meal entries with gorm
type MealEntryRepository struct {
	db *gorm.DB
}

// NewMealEntryRepository creates a new repository
func NewMealEntryRepository(db *gorm.DB) *MealEntryRepository {
	return &MealEntryRepository{db: db}
}

// GetByID returns the entry or ErrEntryNotFound
func (r *MealEntryRepository) GetByID(ctx context.Context, id string) (*domain.MealEntry, error) {
	var rec mealEntryRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal entry %s: %w", id, err)
	}
	return rec.toDomain(), nil
}

// FindAggregate returns the most recently updated completed row for key.
// Rows still being analysed or left failed are never aggregated into.
func (r *MealEntryRepository) FindAggregate(ctx context.Context, key domain.MealKey) (*domain.MealEntry, error) {
	var rec mealEntryRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND meal_type = ? AND logged_date = ?", key.UserID, string(key.MealType), key.LoggedDate).
		Where("analysis_status = ?", string(domain.StatusCompleted)).
		Order("updated_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find meal entry: %w", err)
	}
	return rec.toDomain(), nil
}

// Create inserts a new entry and fills its timestamps
func (r *MealEntryRepository) Create(ctx context.Context, entry *domain.MealEntry) error {
	rec := fromDomain(entry)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create meal entry: %w", err)
	}
	entry.CreatedAt, entry.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

// Update writes every column of an existing entry
func (r *MealEntryRepository) Update(ctx context.Context, entry *domain.MealEntry) error {
	rec := fromDomain(entry)
	result := r.db.WithContext(ctx).Model(rec).Select("*").Omit("created_at").Updates(rec)
	if result.Error != nil {
		return fmt.Errorf("update meal entry %s: %w", entry.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	entry.UpdatedAt = rec.UpdatedAt
	return nil
}

func fromDomain(e *domain.MealEntry) *mealEntryRecord {
	items := e.FoodItems
	if items == nil {
		items = []domain.FoodItem{}
	}
	return &mealEntryRecord{
		ID:               e.ID,
		UserID:           e.UserID,
		MealType:         string(e.MealType),
		LoggedDate:       e.LoggedDate,
		FoodItems:        datatypes.JSONSlice[domain.FoodItem](items),
		TotalCalories:    e.Totals.Calories,
		TotalProtein:     e.Totals.ProteinG,
		TotalCarbs:       e.Totals.CarbsG,
		TotalFat:         e.Totals.FatG,
		TotalFiber:       e.Totals.FiberG,
		TotalSugar:       e.Totals.SugarG,
		Notes:            e.Notes,
		ImageURL:         e.ImageURL,
		AnalysisStatus:   string(e.AnalysisStatus),
		AnalysisProgress: e.AnalysisProgress,
		AnalysisStage:    e.AnalysisStage,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (r *mealEntryRecord) toDomain() *domain.MealEntry {
	return &domain.MealEntry{
		ID:         r.ID,
		UserID:     r.UserID,
		MealType:   domain.MealType(r.MealType),
		LoggedDate: r.LoggedDate,
		FoodItems:  []domain.FoodItem(r.FoodItems),
		Totals: domain.MealTotals{
			Calories: r.TotalCalories,
			ProteinG: r.TotalProtein,
			CarbsG:   r.TotalCarbs,
			FatG:     r.TotalFat,
			FiberG:   r.TotalFiber,
			SugarG:   r.TotalSugar,
		},
		Notes:            r.Notes,
		ImageURL:         r.ImageURL,
		AnalysisStatus:   domain.AnalysisStatus(r.AnalysisStatus),
		AnalysisProgress: r.AnalysisProgress,
		AnalysisStage:    r.AnalysisStage,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
