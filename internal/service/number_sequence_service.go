package service

import (
	"context"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NumberSequenceService generates document numbers.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: INV-2026-0001, QUO-2026-0042
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithTx returns a service whose sequence updates join the given transaction
func (s *NumberSequenceService) WithTx(tx *gorm.DB) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   s.repo.WithTx(tx),
		logger: s.logger,
		now:    s.now,
	}
}

// GenerateDocumentNumber allocates the next number for the kind in the current year
func (s *NumberSequenceService) GenerateDocumentNumber(ctx context.Context, kind domain.DocumentType) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidDocumentType, kind)
	}

	year := s.now().Year()
	prefix := kind.NumberPrefix()

	nextSeq, err := s.repo.GetNextNumber(ctx, prefix, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("prefix", prefix),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", kind, err)
	}

	number := domain.FormatDocumentNumber(kind, year, nextSeq)

	s.logger.Info("generated document number",
		zap.String("number", number),
		zap.String("document_type", string(kind)),
		zap.Int("sequence", nextSeq))

	return number, nil
}
