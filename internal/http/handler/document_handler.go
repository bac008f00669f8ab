package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/render"
	"github.com/autoline-panel/shop-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler serves the admin quote and invoice documents
type DocumentHandler struct {
	documentService *service.DocumentService
	shop            *config.ShopConfig
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, shop *config.ShopConfig, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		shop:            shop,
		logger:          logger,
	}
}

// List godoc
// @Summary List documents
// @Description Paginated quotes and invoices, newest document date first
// @Tags Documents
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Document kind" Enums(quote, invoice)
// @Param status query string false "Invoice status" Enums(draft, sent, paid)
// @Param search query string false "Search number, customer, car model or registration"
// @Success 200 {object} domain.APIResponse{data=domain.PaginatedResponse{data=[]domain.DocumentDTO}}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := domain.DocumentFilters{
		DocumentType: domain.DocumentType(q.Get("type")),
		Search:       q.Get("search"),
	}
	if status := q.Get("status"); status != "" {
		parsed, err := domain.ParseInvoiceStatus(status)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid status: must be one of draft, sent, paid")
			return
		}
		filters.Status = parsed
	}

	result, err := h.documentService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.handleDocumentError(w, r, err, "list documents")
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create document
// @Description Creates a quote or an invoice. The number and total are assigned by the server.
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body domain.CreateDocumentRequest true "Document"
// @Success 201 {object} domain.APIResponse{data=domain.DocumentDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Referenced quote request not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices [post]
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Create(r.Context(), &req)
	if err != nil {
		h.handleDocumentError(w, r, err, "create document")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/admin/invoices/%s", doc.ID))
	respondSuccess(w, http.StatusCreated, doc)
}

// GetByID godoc
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.APIResponse{data=domain.DocumentDTO}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(r.Context(), id)
	if err != nil {
		h.handleDocumentError(w, r, err, "get document")
		return
	}

	respondSuccess(w, http.StatusOK, doc)
}

// Update godoc
// @Summary Update document
// @Description Partial update. Sending repair_items replaces all items and recomputes the total.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.UpdateDocumentRequest true "Changes"
// @Success 200 {object} domain.APIResponse{data=domain.DocumentDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id} [put]
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req domain.UpdateDocumentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.documentService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleDocumentError(w, r, err, "update document")
		return
	}

	respondSuccess(w, http.StatusOK, doc)
}

// Delete godoc
// @Summary Delete document
// @Description Permanently removes the document and its items
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		h.handleDocumentError(w, r, err, "delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Convert godoc
// @Summary Convert document
// @Description Creates a new document of the other kind from this one. The original is left unchanged.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body domain.ConvertDocumentRequest false "Target kind, defaults to the opposite kind"
// @Success 201 {object} domain.APIResponse{data=domain.DocumentDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id}/convert [post]
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req domain.ConvertDocumentRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	doc, err := h.documentService.Convert(r.Context(), id, req.TargetType)
	if err != nil {
		h.handleDocumentError(w, r, err, "convert document")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/admin/invoices/%s", doc.ID))
	respondSuccess(w, http.StatusCreated, doc)
}

// PDF godoc
// @Summary Render document as PDF
// @Description inline opens the print view, attachment downloads Invoice-<number>.pdf or Quote-<number>.pdf
// @Tags Documents
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Param disposition query string false "Content disposition" Enums(inline, attachment) default(attachment)
// @Success 200 {file} binary
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id}/pdf [get]
func (h *DocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	disposition := r.URL.Query().Get("disposition")
	switch disposition {
	case "":
		disposition = "attachment"
	case "inline", "attachment":
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid disposition: must be inline or attachment")
		return
	}

	doc, err := h.documentService.GetDocument(r.Context(), id)
	if err != nil {
		h.handleDocumentError(w, r, err, "get document")
		return
	}

	layout := render.BuildLayout(doc, h.shop)
	out, err := render.PDF(layout)
	if err != nil {
		requestLogger(r, h.logger).Error("failed to render pdf", zap.String("document_number", doc.DocumentNumber), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to render document")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, layout.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// GetActivities godoc
// @Summary Document activity trail
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.APIResponse{data=[]domain.ActivityDTO}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/invoices/{id}/activities [get]
func (h *DocumentHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	activities, err := h.documentService.ListActivities(r.Context(), id)
	if err != nil {
		h.handleDocumentError(w, r, err, "list document activities")
		return
	}

	respondSuccess(w, http.StatusOK, activities)
}

func (h *DocumentHandler) handleDocumentError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		respondWithError(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote request not found")
	case errors.Is(err, service.ErrInvalidDocumentType):
		respondWithError(w, http.StatusBadRequest, "Invalid document type: must be quote or invoice")
	case errors.Is(err, service.ErrSameDocumentType):
		respondWithError(w, http.StatusBadRequest, "Document is already of the requested type")
	case errors.Is(err, service.ErrStatusNotApplicable):
		respondWithError(w, http.StatusBadRequest, "Quote documents do not have a status")
	case errors.Is(err, service.ErrInvalidStatus):
		respondWithError(w, http.StatusBadRequest, "Invalid status: must be one of draft, sent, paid")
	case errors.Is(err, service.ErrNoRepairItems),
		errors.Is(err, service.ErrMultipleLabourItems),
		errors.Is(err, service.ErrInvalidRepairCategory),
		errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		requestLogger(r, h.logger).Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
