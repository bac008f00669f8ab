package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository stores the trail written for documents and quote requests
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an entry; a zero OccurredAt is stamped with the current time
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	switch activity.TargetType {
	case domain.ActivityTargetDocument, domain.ActivityTargetQuote:
	default:
		return fmt.Errorf("unknown activity target %q", activity.TargetType)
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByTarget returns up to limit entries of one document or quote, newest first.
// Entries written in the same instant keep their insertion order reversed.
func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("occurred_at DESC").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
