package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/logger"
	"github.com/autoline-panel/shop-api/internal/mapper"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService handles public quote requests and their admin status
type QuoteService struct {
	quoteRepo  *repository.QuoteRepository
	uploadRepo *repository.UploadRepository
	activities *ActivityService
	maxImages  int
	logger     *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	uploadRepo *repository.UploadRepository,
	activities *ActivityService,
	maxImages int,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:  quoteRepo,
		uploadRepo: uploadRepo,
		activities: activities,
		maxImages:  maxImages,
		logger:     logger,
	}
}

// Create stores a public submission as a pending quote request. Image URLs
// must come from the upload endpoint and are claimed by the new quote.
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	images := dedupe(req.Images)
	if s.maxImages > 0 && len(images) > s.maxImages {
		return nil, fmt.Errorf("%w: at most %d images", ErrTooManyImages, s.maxImages)
	}

	if len(images) > 0 {
		uploads, err := s.uploadRepo.ListUnclaimedByURL(ctx, images)
		if err != nil {
			return nil, fmt.Errorf("failed to look up uploads: %w", err)
		}
		if len(uploads) != len(images) {
			return nil, ErrUnknownImage
		}
	}

	quote := &domain.Quote{
		CustomerName:      strings.TrimSpace(req.Name),
		Phone:             strings.TrimSpace(req.Phone),
		CarModel:          strings.TrimSpace(req.CarModel),
		DamageDescription: strings.TrimSpace(req.DamageDescription),
		Status:            domain.QuoteStatusPending,
	}
	quote.SetImages(images)

	if err := s.quoteRepo.CreateWithUploads(ctx, quote, images); err != nil {
		if errors.Is(err, repository.ErrUploadsClaimed) {
			return nil, ErrUnknownImage
		}
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("quote request received",
		zap.String("quote_id", quote.ID.String()),
		zap.Int("images", len(images)))

	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID,
		"Quote request received",
		fmt.Sprintf("%s requested a quote for a %s", quote.CustomerName, quote.CarModel))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a page of quote requests. An empty status lists all of them.
func (s *QuoteService) List(ctx context.Context, page, pageSize int, status, search string) (*domain.PaginatedResponse, error) {
	var statusFilter *domain.QuoteStatus
	if status != "" {
		parsed, err := domain.ParseQuoteStatus(status)
		if err != nil {
			return nil, err
		}
		statusFilter = &parsed
	}

	page, pageSize = repository.NormalizePagination(page, pageSize)

	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, statusFilter, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves a quote request to another status
func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (*domain.QuoteDTO, error) {
	next, err := domain.ParseQuoteStatus(raw)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	previous := quote.Status
	if previous != "" && !previous.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStatus, previous, next)
	}

	if previous != next {
		if err := s.quoteRepo.UpdateStatus(ctx, id, next); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrQuoteNotFound
			}
			return nil, fmt.Errorf("failed to update quote status: %w", err)
		}
		quote.Status = next

		logger.FromContext(ctx, s.logger).Info("quote status changed",
			zap.String("quote_id", id.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(next)))

		s.activities.Record(ctx, domain.ActivityTargetQuote, id,
			"Status changed",
			fmt.Sprintf("Status changed from %s to %s", previous, next))
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// ListActivities returns the trail of a quote request
func (s *QuoteService) ListActivities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.activities.ListByTarget(ctx, domain.ActivityTargetQuote, id)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
