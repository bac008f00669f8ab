package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository persists quotes and invoices together with their repair items
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the document and its items
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := doc.Items
		doc.Items = nil
		if err := tx.Create(doc).Error; err != nil {
			doc.Items = items
			return fmt.Errorf("failed to create document: %w", err)
		}
		if err := createItems(tx, doc.ID, items); err != nil {
			doc.Items = items
			return err
		}
		doc.Items = items
		return nil
	})
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) GetByNumber(ctx context.Context, number string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("document_number = ?", number).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update saves the document columns and replaces its items. The document
// must have been loaded first.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(doc).Error; err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&domain.RepairItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear repair items: %w", err)
		}
		return createItems(tx, doc.ID, doc.Items)
	})
}

// UpdateStatus changes only the status column
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the document and its items
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&domain.RepairItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete repair items: %w", err)
		}
		result := tx.Delete(&domain.Document{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete document: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns a page of documents, newest document date first
func (r *DocumentRepository) List(ctx context.Context, page, pageSize int, filters domain.DocumentFilters) ([]domain.Document, int64, error) {
	var docs []domain.Document
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Document{})

	if filters.DocumentType != "" {
		query = query.Where("document_type = ?", filters.DocumentType)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		searchPattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(document_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(car_model) LIKE ? OR LOWER(vehicle_reg_number) LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items", preloadItems).
		Offset(offset).Limit(pageSize).
		Order("document_date DESC, created_at DESC").
		Find(&docs).Error

	return docs, total, err
}

func createItems(tx *gorm.DB, documentID uuid.UUID, items []domain.RepairItem) error {
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].DocumentID = documentID
		items[i].Position = i
	}
	if len(items) == 0 {
		return nil
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create repair items: %w", err)
	}
	return nil
}
