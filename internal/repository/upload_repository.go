package repository

import (
	"context"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadRepository tracks images stored for quote submissions
type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *UploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.db.WithContext(ctx).First(&upload, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// ListUnclaimedByURL returns the uploads with the given URLs that no quote has claimed yet
func (r *UploadRepository) ListUnclaimedByURL(ctx context.Context, urls []string) ([]domain.Upload, error) {
	var uploads []domain.Upload
	if len(urls) == 0 {
		return uploads, nil
	}
	err := r.db.WithContext(ctx).
		Where("url IN ? AND quote_id IS NULL", urls).
		Find(&uploads).Error
	return uploads, err
}

// ListByQuote returns all uploads claimed by a quote
func (r *UploadRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&uploads).Error
	return uploads, err
}

// ListUnclaimedBefore returns uploads no quote claimed that were created before cutoff
func (r *UploadRepository) ListUnclaimedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := r.db.WithContext(ctx).
		Where("quote_id IS NULL AND created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Upload{}, "id = ?", id).Error
}

// GetByStoragePath finds the upload stored under storagePath
func (r *UploadRepository) GetByStoragePath(ctx context.Context, storagePath string) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.db.WithContext(ctx).First(&upload, "storage_path = ?", storagePath).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}
