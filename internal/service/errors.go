package service

import (
	"errors"

	"github.com/autoline-panel/shop-api/internal/domain"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")
)

// Document errors
var (
	ErrDocumentNotFound = errors.New("document not found")

	// Re-exported so handlers only need to know the service package
	ErrInvalidDocumentType   = domain.ErrInvalidDocumentType
	ErrSameDocumentType      = domain.ErrSameDocumentType
	ErrInvalidStatus         = domain.ErrInvalidStatus
	ErrStatusNotApplicable   = domain.ErrStatusNotApplicable
	ErrNoRepairItems         = domain.ErrNoRepairItems
	ErrMultipleLabourItems   = domain.ErrMultipleLabourItems
	ErrInvalidRepairCategory = domain.ErrInvalidRepairCategory
)

// Quote errors
var (
	ErrQuoteNotFound = errors.New("quote not found")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminNotFound      = errors.New("admin user not found")
)

// Upload errors
var (
	ErrNoImages             = errors.New("no images provided")
	ErrTooManyImages        = errors.New("too many images")
	ErrImageTooLarge        = errors.New("image exceeds the maximum size")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrUnknownImage         = errors.New("image was not uploaded through this service")
	ErrUploadNotFound       = errors.New("upload not found")
)
