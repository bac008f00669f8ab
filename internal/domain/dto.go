package domain

import (
	"github.com/google/uuid"
)

// APIResponse is the success envelope of every JSON endpoint
type APIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// ErrorResponse is documented for swagger; errors are sent as APIError
type ErrorResponse struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Document DTOs

type RepairItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Position    int       `json:"position"`
	RepairType  string    `json:"repair_type"`
	Description string    `json:"description"`
	Amount      Amount    `json:"amount"`
}

type DocumentDTO struct {
	ID               uuid.UUID       `json:"id"`
	DocumentNumber   string          `json:"document_number"`
	QuoteID          *uuid.UUID      `json:"quote_id,omitempty"`
	SourceDocumentID *uuid.UUID      `json:"source_document_id,omitempty"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	CarModel         string          `json:"car_model"`
	VehicleRegNumber string          `json:"vehicle_reg_number,omitempty"`
	DocumentDate     string          `json:"document_date"`
	DocumentType     DocumentType    `json:"document_type"`
	Status           InvoiceStatus   `json:"status"`
	StatusLabel      string          `json:"status_label"`
	RepairType       string          `json:"repair_type"`
	Description      string          `json:"description"`
	TotalAmount      Amount          `json:"total_amount"`
	TotalFormatted   string          `json:"total_formatted"`
	Items            []RepairItemDTO `json:"repair_items"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// RepairItemInput is one line of a create or update request
type RepairItemInput struct {
	RepairType  string `json:"repair_type" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
	Amount      Amount `json:"amount"`
}

// CreateDocumentRequest creates a quote or an invoice. The total is always
// computed from the items.
type CreateDocumentRequest struct {
	QuoteID          *uuid.UUID        `json:"quote_id"`
	CustomerName     string            `json:"customer_name" validate:"required_without=QuoteID,max=200"`
	CustomerPhone    string            `json:"customer_phone" validate:"omitempty,max=30"`
	CarModel         string            `json:"car_model" validate:"max=200"`
	VehicleRegNumber string            `json:"vehicle_reg_number" validate:"max=30"`
	DocumentDate     string            `json:"document_date" validate:"omitempty,datetime=2006-01-02"`
	DocumentType     DocumentType      `json:"document_type" validate:"required,oneof=quote invoice"`
	Status           InvoiceStatus     `json:"status" validate:"omitempty,oneof=draft sent paid"`
	Items            []RepairItemInput `json:"repair_items" validate:"required,min=1,max=50,dive"`
}

// UpdateDocumentRequest is a partial update; absent fields are left unchanged.
// Sending repair_items replaces the whole item list.
type UpdateDocumentRequest struct {
	CustomerName     *string            `json:"customer_name" validate:"omitempty,min=1,max=200"`
	CustomerPhone    *string            `json:"customer_phone" validate:"omitempty,max=30"`
	CarModel         *string            `json:"car_model" validate:"omitempty,max=200"`
	VehicleRegNumber *string            `json:"vehicle_reg_number" validate:"omitempty,max=30"`
	DocumentDate     *string            `json:"document_date" validate:"omitempty,datetime=2006-01-02"`
	Status           *string            `json:"status" validate:"omitempty,max=20"`
	Items            *[]RepairItemInput `json:"repair_items" validate:"omitempty,min=1,max=50,dive"`
}

// ConvertDocumentRequest selects the target kind; empty means the opposite kind
type ConvertDocumentRequest struct {
	TargetType DocumentType `json:"target_type" validate:"omitempty,oneof=quote invoice"`
}

// DocumentFilters narrows the document list
type DocumentFilters struct {
	DocumentType DocumentType
	Status       InvoiceStatus
	Search       string
}

// Quote DTOs

type QuoteDTO struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Phone             string      `json:"phone"`
	CarModel          string      `json:"car_model"`
	DamageDescription string      `json:"damage_description"`
	Images            []string    `json:"images"`
	Status            QuoteStatus `json:"status"`
	CreatedAt         string      `json:"created_at"`
	UpdatedAt         string      `json:"updated_at"`
}

// CreateQuoteRequest is a public quote submission
type CreateQuoteRequest struct {
	Name              string   `json:"name" validate:"required,max=200"`
	Phone             string   `json:"phone" validate:"required,numeric,min=7,max=15"`
	CarModel          string   `json:"car_model" validate:"required,max=200"`
	DamageDescription string   `json:"damage_description" validate:"required,max=5000"`
	Images            []string `json:"images" validate:"max=5,dive,url"`
}

type UpdateQuoteStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Upload DTOs

type UploadDTO struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Filename    string    `json:"filename"`
}

// Auth DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Admin     AdminUserDTO `json:"admin"`
}

type AdminUserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	LastLoginAt string    `json:"last_login_at,omitempty"`
}

// Activity DTOs

type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"target_type"`
	TargetID    uuid.UUID          `json:"target_id"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	OccurredAt  string             `json:"occurred_at"`
	CreatorName string             `json:"creator_name,omitempty"`
}
