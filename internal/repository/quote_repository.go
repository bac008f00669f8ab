package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUploadsClaimed is returned when an upload was claimed by another quote
// between lookup and insert
var ErrUploadsClaimed = errors.New("uploads already claimed")

// QuoteRepository persists public quote requests
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// CreateWithUploads inserts the quote and claims the given uploads for it
func (r *QuoteRepository) CreateWithUploads(ctx context.Context, quote *domain.Quote, uploadURLs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quote).Error; err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		if len(uploadURLs) == 0 {
			return nil
		}
		result := tx.Model(&domain.Upload{}).
			Where("url IN ? AND quote_id IS NULL", uploadURLs).
			Update("quote_id", quote.ID)
		if result.Error != nil {
			return fmt.Errorf("failed to claim uploads: %w", result.Error)
		}
		if result.RowsAffected != int64(len(uploadURLs)) {
			return ErrUploadsClaimed
		}
		return nil
	})
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update quote status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns quotes newest first, optionally narrowed by status and a search term
func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, status *domain.QuoteStatus, search string) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Quote{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(customer_name) LIKE ? OR phone LIKE ? OR LOWER(car_model) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotes).Error

	return quotes, total, err
}

