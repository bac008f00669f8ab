package domain

import "errors"

// Document rule violations
var (
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrSameDocumentType      = errors.New("document is already of the target type")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrStatusNotApplicable   = errors.New("quote documents do not carry a status")
	ErrNoRepairItems         = errors.New("at least one repair item is required besides labour")
	ErrMultipleLabourItems   = errors.New("a document has exactly one labour item")
	ErrCannotRemoveLabour    = errors.New("the labour item cannot be removed")
	ErrMinimumItems          = errors.New("a document keeps at least two items")
	ErrInvalidRepairCategory = errors.New("invalid repair category")
	ErrItemIndexOutOfRange   = errors.New("item index out of range")
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationMessages maps validator tags to user-facing messages
var ValidationMessages = map[string]string{
	"required":         "This field is required",
	"required_without": "This field is required",
	"email":            "Must be a valid email address",
	"max":              "Exceeds maximum length",
	"min":              "Below minimum length",
	"uuid":             "Must be a valid UUID",
	"url":              "Must be a valid URL",
	"oneof":            "Must be one of the allowed values",
	"numeric":          "Must contain digits only",
	"datetime":         "Must be a date in YYYY-MM-DD format",
	"dive":             "Contains an invalid entry",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeTooLarge     = "payload_too_large"
	ErrorTypeRateLimited  = "rate_limited"
	ErrorTypeInternal     = "internal_error"
)
