package domain_test

import (
	"testing"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *domain.Document {
	quoteID := uuid.New()
	doc := &domain.Document{
		DocumentNumber:   "INV-2026-0007",
		QuoteID:          &quoteID,
		CustomerName:     "Thabo Mokoena",
		CustomerPhone:    "0821234567",
		CarModel:         "Toyota Corolla",
		VehicleRegNumber: "CA 123-456",
		DocumentDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		DocumentType:     domain.DocumentTypeInvoice,
		Status:           domain.InvoiceStatusPaid,
		Items: []domain.RepairItem{
			item(domain.CategoryBumperRepair, "1200"),
			item(domain.CategoryLabour, "500"),
		},
	}
	doc.ID = uuid.New()
	doc.Recalculate()
	return doc
}

func TestDocument_Recalculate(t *testing.T) {
	doc := sampleInvoice()
	assert.True(t, decimal.NewFromInt(1700).Equal(doc.TotalAmount))
	assert.Equal(t, "Bumper Repair", doc.RepairType)
	assert.Equal(t, "Bumper Repair: Bumper Repair; Labour: Labour", doc.Description)

	doc.Items[0].Amount = decimal.NewFromInt(2000)
	doc.Recalculate()
	assert.True(t, decimal.NewFromInt(2500).Equal(doc.TotalAmount))
}

func TestDocument_ConvertTo(t *testing.T) {
	src := sampleInvoice()
	before := *src
	beforeItems := append([]domain.RepairItem(nil), src.Items...)

	quote, err := src.ConvertTo(domain.DocumentTypeQuote, "QUO-2026-0001")
	require.NoError(t, err)

	assert.Equal(t, "QUO-2026-0001", quote.DocumentNumber)
	assert.NotEqual(t, src.DocumentNumber, quote.DocumentNumber)
	assert.Equal(t, domain.DocumentTypeQuote, quote.DocumentType)
	assert.Equal(t, domain.InvoiceStatus(""), quote.Status)
	assert.Equal(t, uuid.Nil, quote.ID)
	require.NotNil(t, quote.SourceDocumentID)
	assert.Equal(t, src.ID, *quote.SourceDocumentID)
	assert.Equal(t, *src.QuoteID, *quote.QuoteID)

	assert.Equal(t, src.CustomerName, quote.CustomerName)
	assert.Equal(t, src.CustomerPhone, quote.CustomerPhone)
	assert.Equal(t, src.CarModel, quote.CarModel)
	assert.Equal(t, src.VehicleRegNumber, quote.VehicleRegNumber)
	assert.Equal(t, src.DocumentDate, quote.DocumentDate)
	assert.True(t, src.TotalAmount.Equal(quote.TotalAmount))
	require.Len(t, quote.Items, 2)
	assert.Equal(t, domain.CategoryLabour, quote.Items[1].Category)

	// source untouched
	assert.Equal(t, before.DocumentNumber, src.DocumentNumber)
	assert.Equal(t, before.DocumentType, src.DocumentType)
	assert.Equal(t, before.Status, src.Status)
	assert.Equal(t, beforeItems, src.Items)

	back, err := quote.ConvertTo(domain.DocumentTypeInvoice, "INV-2026-0008")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, back.Status)
}

func TestDocument_WithoutItemsKeepsSummary(t *testing.T) {
	doc := &domain.Document{
		DocumentNumber: "INV-2026-0011",
		CustomerName:   "Lerato Dlamini",
		DocumentType:   domain.DocumentTypeInvoice,
		Status:         domain.InvoiceStatusDraft,
		RepairType:     "Panel Beating",
		Description:    "rear quarter panel",
		TotalAmount:    decimal.NewFromInt(2500),
	}
	doc.ID = uuid.New()

	doc.Recalculate()
	assert.True(t, decimal.NewFromInt(2500).Equal(doc.TotalAmount))
	assert.Equal(t, "Panel Beating", doc.RepairType)
	assert.Equal(t, "rear quarter panel", doc.Description)

	quote, err := doc.ConvertTo(domain.DocumentTypeQuote, "QUO-2026-0003")
	require.NoError(t, err)
	assert.Empty(t, quote.Items)
	assert.True(t, decimal.NewFromInt(2500).Equal(quote.TotalAmount))
	assert.Equal(t, "Panel Beating", quote.RepairType)
	assert.Equal(t, "rear quarter panel", quote.Description)
}

func TestDocument_ConvertTo_Rejects(t *testing.T) {
	src := sampleInvoice()

	_, err := src.ConvertTo(domain.DocumentTypeInvoice, "INV-2026-0009")
	assert.ErrorIs(t, err, domain.ErrSameDocumentType)

	_, err = src.ConvertTo("receipt", "X-1")
	assert.ErrorIs(t, err, domain.ErrInvalidDocumentType)
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", domain.FormatDocumentNumber(domain.DocumentTypeInvoice, 2026, 1))
	assert.Equal(t, "QUO-2027-0420", domain.FormatDocumentNumber(domain.DocumentTypeQuote, 2027, 420))
	assert.Equal(t, "INV-2026-12345", domain.FormatDocumentNumber(domain.DocumentTypeInvoice, 2026, 12345))
}
