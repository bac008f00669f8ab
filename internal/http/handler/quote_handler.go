package handler

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/service"
	"go.uber.org/zap"
)

// QuoteHandler serves public quote requests and their admin management
type QuoteHandler struct {
	quoteService *service.QuoteService
	uploads      *UploadHandler
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, uploads *UploadHandler, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		uploads:      uploads,
		logger:       logger,
	}
}

// Create godoc
// @Summary Submit a quote request
// @Description Accepts JSON with image URLs returned by POST /uploads, or multipart with the images attached.
// @Tags Public
// @Accept json,mpfd
// @Produce json
// @Param request body domain.CreateQuoteRequest false "Quote request (JSON)"
// @Param name formData string false "Customer name (multipart)"
// @Param phone formData string false "Phone, digits only (multipart)"
// @Param carModel formData string false "Car model (multipart)"
// @Param description formData string false "Damage description (multipart)"
// @Param images formData file false "Damage images (multipart)"
// @Success 201 {object} domain.APIResponse{data=domain.QuoteDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.createMultipart(w, r)
		return
	}

	var req domain.CreateQuoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	h.create(w, r, &req)
}

// createMultipart validates the form fields before any image is stored
func (h *QuoteHandler) createMultipart(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.uploads.requestLimit()); err != nil {
		respondMultipartError(w, err, "Quote request too large")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := domain.CreateQuoteRequest{
		Name:              r.FormValue("name"),
		Phone:             r.FormValue("phone"),
		CarModel:          firstNonEmpty(r.FormValue("carModel"), r.FormValue("car_model")),
		DamageDescription: firstNonEmpty(r.FormValue("description"), r.FormValue("damage_description")),
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	headers := r.MultipartForm.File[imagesField]
	if len(headers) > 0 {
		files, closeFiles, err := openImageFiles(headers)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid image upload")
			return
		}
		defer closeFiles()

		uploads, err := h.uploads.uploadService.UploadImages(r.Context(), files)
		if err != nil {
			handleUploadError(w, requestLogger(r, h.logger), err)
			return
		}
		for _, u := range uploads {
			req.Images = append(req.Images, u.URL)
		}
	}

	h.create(w, r, &req)
}

func (h *QuoteHandler) create(w http.ResponseWriter, r *http.Request, req *domain.CreateQuoteRequest) {
	quote, err := h.quoteService.Create(r.Context(), req)
	if err != nil {
		h.handleQuoteError(w, r, err, "submit quote request")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/admin/quotes/%s", quote.ID))
	respondSuccess(w, http.StatusCreated, quote)
}

// List godoc
// @Summary List quote requests
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(pending, contacted, completed)
// @Param search query string false "Search name, phone or car model"
// @Success 200 {object} domain.APIResponse{data=domain.PaginatedResponse{data=[]domain.QuoteDTO}}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	result, err := h.quoteService.List(r.Context(), page, pageSize, q.Get("status"), q.Get("search"))
	if err != nil {
		h.handleQuoteError(w, r, err, "list quote requests")
		return
	}

	respondSuccess(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get quote request
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote request ID"
// @Success 200 {object} domain.APIResponse{data=domain.QuoteDTO}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		h.handleQuoteError(w, r, err, "get quote request")
		return
	}

	respondSuccess(w, http.StatusOK, quote)
}

// UpdateStatus godoc
// @Summary Change quote request status
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote request ID"
// @Param request body domain.UpdateQuoteStatusRequest true "New status"
// @Success 200 {object} domain.APIResponse{data=domain.QuoteDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/quotes/{id}/status [put]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	quote, err := h.quoteService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.handleQuoteError(w, r, err, "update quote request status")
		return
	}

	respondSuccess(w, http.StatusOK, quote)
}

// GetActivities godoc
// @Summary Quote request activity trail
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote request ID"
// @Success 200 {object} domain.APIResponse{data=[]domain.ActivityDTO}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/quotes/{id}/activities [get]
func (h *QuoteHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	activities, err := h.quoteService.ListActivities(r.Context(), id)
	if err != nil {
		h.handleQuoteError(w, r, err, "list quote request activities")
		return
	}

	respondSuccess(w, http.StatusOK, activities)
}

func (h *QuoteHandler) handleQuoteError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrQuoteNotFound):
		respondWithError(w, http.StatusNotFound, "Quote request not found")
	case errors.Is(err, service.ErrInvalidStatus):
		respondWithError(w, http.StatusBadRequest, "Invalid status: must be one of pending, contacted, completed")
	case errors.Is(err, service.ErrUnknownImage):
		respondWithError(w, http.StatusBadRequest, "Images must be uploaded through /api/uploads first")
	case errors.Is(err, service.ErrTooManyImages):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		requestLogger(r, h.logger).Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
