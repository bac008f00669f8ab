package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocumentType is the kind of a Document
type DocumentType string

const (
	DocumentTypeQuote   DocumentType = "quote"
	DocumentTypeInvoice DocumentType = "invoice"
)

// IsValid checks if the DocumentType is a valid enum value
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeQuote, DocumentTypeInvoice:
		return true
	}
	return false
}

// Opposite returns the kind a conversion produces
func (t DocumentType) Opposite() DocumentType {
	if t == DocumentTypeInvoice {
		return DocumentTypeQuote
	}
	return DocumentTypeInvoice
}

// NumberPrefix is the document number prefix for the kind
func (t DocumentType) NumberPrefix() string {
	if t == DocumentTypeInvoice {
		return "INV"
	}
	return "QUO"
}

// Label is the human name used on rendered documents
func (t DocumentType) Label() string {
	if t == DocumentTypeInvoice {
		return "Invoice"
	}
	return "Quote"
}

// DefaultStatus is the status a new document of this kind starts in.
// Quote-kind documents carry no status.
func (t DocumentType) DefaultStatus() InvoiceStatus {
	if t == DocumentTypeInvoice {
		return InvoiceStatusDraft
	}
	return ""
}

// InvoiceStatus is the workflow state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

// InvoiceStatuses lists every invoice status in display order
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid}

// IsValid checks if the InvoiceStatus is a valid enum value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move an invoice from s to next.
// The graph is complete: any status may follow any other, paid can be reverted.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return s.IsValid() && next.IsValid()
}

// QuoteStatus is the follow-up state of a public quote request
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusContacted QuoteStatus = "contacted"
	QuoteStatusCompleted QuoteStatus = "completed"
)

// QuoteStatuses lists every quote status in display order
var QuoteStatuses = []QuoteStatus{QuoteStatusPending, QuoteStatusContacted, QuoteStatusCompleted}

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusContacted, QuoteStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move a quote request from s to next
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return s.IsValid() && next.IsValid()
}

// ParseQuoteStatus accepts any letter case ("Pending" from older clients)
func ParseQuoteStatus(raw string) (QuoteStatus, error) {
	s := QuoteStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ParseInvoiceStatus accepts any letter case
func ParseInvoiceStatus(raw string) (InvoiceStatus, error) {
	s := InvoiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ValidateStatusFor checks that status belongs to the status set of kind
func ValidateStatusFor(kind DocumentType, status InvoiceStatus) error {
	switch kind {
	case DocumentTypeInvoice:
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		return nil
	case DocumentTypeQuote:
		if status != "" {
			return ErrStatusNotApplicable
		}
		return nil
	default:
		return ErrInvalidDocumentType
	}
}

// StatusLabel is the status as shown to people: "Draft", "Paid", or "N/A" for quotes
func StatusLabel(kind DocumentType, status InvoiceStatus) string {
	if kind != DocumentTypeInvoice || status == "" {
		return "N/A"
	}
	return cases.Title(language.English).String(string(status))
}
