package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/logger"
	"github.com/autoline-panel/shop-api/internal/mapper"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages quotes and invoices: creation, edits, status
// changes, conversion between the two kinds and deletion.
type DocumentService struct {
	db         *gorm.DB
	docRepo    *repository.DocumentRepository
	quoteRepo  *repository.QuoteRepository
	numbers    *NumberSequenceService
	activities *ActivityService
	logger     *zap.Logger
	now        func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	db *gorm.DB,
	docRepo *repository.DocumentRepository,
	quoteRepo *repository.QuoteRepository,
	numbers *NumberSequenceService,
	activities *ActivityService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		db:         db,
		docRepo:    docRepo,
		quoteRepo:  quoteRepo,
		numbers:    numbers,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// Create stores a new quote or invoice. When a quote request is referenced,
// customer fields left empty are taken from it.
func (s *DocumentService) Create(ctx context.Context, req *domain.CreateDocumentRequest) (*domain.DocumentDTO, error) {
	if !req.DocumentType.IsValid() {
		return nil, ErrInvalidDocumentType
	}

	doc := &domain.Document{
		QuoteID:          req.QuoteID,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		CarModel:         strings.TrimSpace(req.CarModel),
		VehicleRegNumber: strings.TrimSpace(req.VehicleRegNumber),
		DocumentType:     req.DocumentType,
		Status:           req.Status,
	}

	if req.QuoteID != nil {
		quote, err := s.quoteRepo.GetByID(ctx, *req.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrQuoteNotFound
			}
			return nil, fmt.Errorf("failed to get quote: %w", err)
		}
		prefillFromQuote(doc, quote)
	}

	if doc.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	if doc.DocumentType == domain.DocumentTypeInvoice && doc.Status == "" {
		doc.Status = domain.InvoiceStatusDraft
	}
	if err := domain.ValidateStatusFor(doc.DocumentType, doc.Status); err != nil {
		return nil, err
	}

	date, err := mapper.ParseDocumentDate(req.DocumentDate, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid document date", ErrInvalidInput)
	}
	doc.DocumentDate = date

	items, err := mapper.ToRepairItems(req.Items)
	if err != nil {
		return nil, err
	}
	if doc.Items, err = domain.NormalizeItems(items); err != nil {
		return nil, err
	}
	doc.Recalculate()

	if err := s.createWithNumber(ctx, doc); err != nil {
		return nil, err
	}

	logger.WithDocument(logger.FromContext(ctx, s.logger), doc.ID.String(), doc.DocumentNumber, string(doc.DocumentType)).
		Info("document created", zap.String("total", doc.TotalAmount.StringFixed(2)))

	s.activities.Record(ctx, domain.ActivityTargetDocument, doc.ID,
		doc.DocumentType.Label()+" created",
		fmt.Sprintf("%s %s was created for %s (%s)", doc.DocumentType.Label(), doc.DocumentNumber, doc.CustomerName, domain.FormatZAR(doc.TotalAmount)))

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// GetByID returns one document with its items
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// GetDocument returns the stored document, for rendering
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// Update applies a partial edit. Sending items replaces the item list and
// always recomputes the total.
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDocumentRequest) (*domain.DocumentDTO, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := doc.Status

	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
		}
		doc.CustomerName = name
	}
	if req.CustomerPhone != nil {
		doc.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.CarModel != nil {
		doc.CarModel = strings.TrimSpace(*req.CarModel)
	}
	if req.VehicleRegNumber != nil {
		doc.VehicleRegNumber = strings.TrimSpace(*req.VehicleRegNumber)
	}
	if req.DocumentDate != nil {
		date, err := mapper.ParseDocumentDate(*req.DocumentDate, s.now())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid document date", ErrInvalidInput)
		}
		doc.DocumentDate = date
	}
	if req.Status != nil {
		status, err := resolveStatus(doc, *req.Status)
		if err != nil {
			return nil, err
		}
		doc.Status = status
	}
	if req.Items != nil {
		items, err := mapper.ToRepairItems(*req.Items)
		if err != nil {
			return nil, err
		}
		if doc.Items, err = domain.NormalizeItems(items); err != nil {
			return nil, err
		}
	}
	doc.Recalculate()

	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	docLogger := logger.WithDocument(logger.FromContext(ctx, s.logger), doc.ID.String(), doc.DocumentNumber, string(doc.DocumentType))
	docLogger.Info("document updated", zap.String("total", doc.TotalAmount.StringFixed(2)))

	s.activities.Record(ctx, domain.ActivityTargetDocument, doc.ID,
		doc.DocumentType.Label()+" updated",
		fmt.Sprintf("%s %s was updated, total %s", doc.DocumentType.Label(), doc.DocumentNumber, domain.FormatZAR(doc.TotalAmount)))

	if doc.Status != previousStatus {
		docLogger.Info("document status changed",
			zap.String("from", string(previousStatus)),
			zap.String("to", string(doc.Status)))
		s.activities.Record(ctx, domain.ActivityTargetDocument, doc.ID,
			"Status changed",
			fmt.Sprintf("Status changed from %s to %s",
				domain.StatusLabel(doc.DocumentType, previousStatus), doc.StatusLabel()))
	}

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

// Delete permanently removes a document and its items
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.WithDocument(logger.FromContext(ctx, s.logger), doc.ID.String(), doc.DocumentNumber, string(doc.DocumentType)).
		Info("document deleted")

	s.activities.Record(ctx, domain.ActivityTargetDocument, doc.ID,
		doc.DocumentType.Label()+" deleted",
		fmt.Sprintf("%s %s for %s was deleted", doc.DocumentType.Label(), doc.DocumentNumber, doc.CustomerName))

	return nil
}

// List returns a page of documents
func (s *DocumentService) List(ctx context.Context, page, pageSize int, filters domain.DocumentFilters) (*domain.PaginatedResponse, error) {
	if filters.DocumentType != "" && !filters.DocumentType.IsValid() {
		return nil, ErrInvalidDocumentType
	}
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	page, pageSize = repository.NormalizePagination(page, pageSize)

	docs, total, err := s.docRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToDocumentDTO(&docs[i])
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

// Convert creates a new document of the target kind from an existing one.
// An empty target means the opposite kind. The source is never modified.
func (s *DocumentService) Convert(ctx context.Context, id uuid.UUID, target domain.DocumentType) (*domain.DocumentDTO, error) {
	source, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if target == "" {
		target = source.DocumentType.Opposite()
	}
	if !target.IsValid() {
		return nil, ErrInvalidDocumentType
	}
	if target == source.DocumentType {
		return nil, ErrSameDocumentType
	}

	converted, err := source.ConvertTo(target, "")
	if err != nil {
		return nil, err
	}
	if len(converted.Items) > 0 {
		if converted.Items, err = domain.NormalizeItems(converted.Items); err != nil {
			return nil, err
		}
		converted.Recalculate()
	}

	if err := s.createWithNumber(ctx, converted); err != nil {
		return nil, err
	}

	logger.WithDocument(logger.FromContext(ctx, s.logger), converted.ID.String(), converted.DocumentNumber, string(converted.DocumentType)).
		Info("document converted", zap.String("source_number", source.DocumentNumber))

	s.activities.Record(ctx, domain.ActivityTargetDocument, source.ID,
		"Converted to "+strings.ToLower(target.Label()),
		fmt.Sprintf("%s %s was created from %s", target.Label(), converted.DocumentNumber, source.DocumentNumber))
	s.activities.Record(ctx, domain.ActivityTargetDocument, converted.ID,
		target.Label()+" created from "+strings.ToLower(source.DocumentType.Label()),
		fmt.Sprintf("%s %s was created from %s %s", target.Label(), converted.DocumentNumber, source.DocumentType.Label(), source.DocumentNumber))

	dto := mapper.ToDocumentDTO(converted)
	return &dto, nil
}

// createWithNumber allocates the document number and inserts the document in
// one transaction, so a failed insert does not consume a number.
func (s *DocumentService) createWithNumber(ctx context.Context, doc *domain.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.WithTx(tx).GenerateDocumentNumber(ctx, doc.DocumentType)
		if err != nil {
			return err
		}
		doc.DocumentNumber = number

		if err := s.docRepo.WithTx(tx).Create(ctx, doc); err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return nil
	})
}

// resolveStatus validates a requested status against the document kind
func resolveStatus(doc *domain.Document, raw string) (domain.InvoiceStatus, error) {
	if doc.DocumentType != domain.DocumentTypeInvoice {
		if strings.TrimSpace(raw) == "" {
			return "", nil
		}
		return "", ErrStatusNotApplicable
	}

	status, err := domain.ParseInvoiceStatus(raw)
	if err != nil {
		return "", err
	}
	if !doc.Status.CanTransitionTo(status) && doc.Status != "" {
		return "", fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStatus, doc.Status, status)
	}
	return status, nil
}

func prefillFromQuote(doc *domain.Document, quote *domain.Quote) {
	if doc.CustomerName == "" {
		doc.CustomerName = quote.CustomerName
	}
	if doc.CustomerPhone == "" {
		doc.CustomerPhone = quote.Phone
	}
	if doc.CarModel == "" {
		doc.CarModel = quote.CarModel
	}
}

// ListActivities returns the trail of a document
func (s *DocumentService) ListActivities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	if _, err := s.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.activities.ListByTarget(ctx, domain.ActivityTargetDocument, id)
}
