package service

import (
	"context"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/auth"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/mapper"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// activityLimit caps the trail returned for one entity
	activityLimit = 100

	publicCreatorName = "Website"
)

// ActivityService records and lists the audit trail of documents and quotes
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

// NewActivityService creates a new ActivityService instance
func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Record writes an activity entry. Failures are logged and swallowed; the
// trail never blocks the operation it describes.
func (s *ActivityService) Record(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType:  targetType,
		TargetID:    targetID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now(),
		CreatorName: publicCreatorName,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID.String()
		activity.CreatorName = userCtx.DisplayName
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity",
			zap.String("target_type", string(targetType)),
			zap.String("target_id", targetID.String()),
			zap.Error(err))
	}
}

// ListByTarget returns the newest activities of an entity first
func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, activityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
