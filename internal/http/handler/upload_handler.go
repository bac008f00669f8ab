package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/autoline-panel/shop-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// imagesField is the multipart field carrying damage photos
const imagesField = "images"

// UploadHandler accepts damage photos from the public quote form
type UploadHandler struct {
	uploadService *service.UploadService
	maxBytes      int64
	maxImages     int
	logger        *zap.Logger
}

func NewUploadHandler(uploadService *service.UploadService, maxBytes int64, maxImages int, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxBytes:      maxBytes,
		maxImages:     maxImages,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload damage images
// @Description Stores up to 5 JPEG, PNG or WebP images of at most 5 MB each. The returned URLs are sent with the quote request.
// @Tags Public
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "Images"
// @Success 201 {object} domain.APIResponse{data=[]domain.UploadDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 413 {object} domain.ErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.requestLimit()); err != nil {
		respondMultipartError(w, err,
			fmt.Sprintf("Upload too large: at most %d images of %d MB each", h.maxImages, h.maxBytes>>20))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, closeFiles, err := openImageFiles(r.MultipartForm.File[imagesField])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}
	defer closeFiles()

	uploads, err := h.uploadService.UploadImages(r.Context(), files)
	if err != nil {
		handleUploadError(w, requestLogger(r, h.logger), err)
		return
	}

	respondSuccess(w, http.StatusCreated, uploads)
}

// Serve godoc
// @Summary Get an uploaded image
// @Tags Public
// @Produce image/jpeg,image/png,image/webp
// @Param path path string true "Storage path"
// @Success 200 {file} binary
// @Failure 404 {object} domain.ErrorResponse
// @Router /uploads/{path} [get]
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	storagePath := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if storagePath == "" {
		respondWithError(w, http.StatusNotFound, "Image not found")
		return
	}

	body, contentType, err := h.uploadService.Open(r.Context(), storagePath)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			respondWithError(w, http.StatusNotFound, "Image not found")
			return
		}
		requestLogger(r, h.logger).Error("failed to open image", zap.String("path", storagePath), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to open image")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		requestLogger(r, h.logger).Warn("failed to stream image", zap.String("path", storagePath), zap.Error(err))
	}
}

// requestLimit is the largest multipart body accepted
func (h *UploadHandler) requestLimit() int64 {
	return int64(h.maxImages)*h.maxBytes + 1<<20
}

func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return r.ParseMultipartForm(limit)
}

// respondMultipartError tells a malformed form apart from an oversized one
func respondMultipartError(w http.ResponseWriter, err error, tooLarge string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		respondWithError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	respondWithError(w, http.StatusBadRequest, "Expected a multipart/form-data body")
}

// openImageFiles opens every part; the returned func closes them all
func openImageFiles(headers []*multipart.FileHeader) ([]service.ImageFile, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]service.ImageFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, service.ImageFile{Filename: header.Filename, Data: f})
	}
	return files, closeAll, nil
}

func handleUploadError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNoImages):
		respondWithError(w, http.StatusBadRequest, "At least one image is required")
	case errors.Is(err, service.ErrTooManyImages),
		errors.Is(err, service.ErrUnsupportedImageType):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrImageTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		logger.Error("failed to upload images", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload images")
	}
}
