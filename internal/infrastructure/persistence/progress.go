package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/platelens/backend/internal/domain"
	"gorm.io/gorm"
)

// ProgressWriter writes analysis checkpoints onto tracked meal_entries rows
type ProgressWriter struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProgressWriter creates a progress sink backed by db
func NewProgressWriter(db *gorm.DB) *ProgressWriter {
	return &ProgressWriter{db: db, now: time.Now}
}

// Report sets status, progress and stage on the entry
func (w *ProgressWriter) Report(ctx context.Context, entryID string, checkpoint domain.ProgressCheckpoint) error {
	result := w.db.WithContext(ctx).
		Model(&mealEntryRecord{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"analysis_status":   string(checkpoint.Status),
			"analysis_progress": checkpoint.Percent,
			"analysis_stage":    checkpoint.Stage,
			"updated_at":        w.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("write progress for %s: %w", entryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}
