package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShop() *config.ShopConfig {
	return &config.ShopConfig{
		Name:              "AutoLine Panel Shop",
		Tagline:           "Professional Auto Body Repair & Panel Beating",
		Phone:             "+27 60 475 5243",
		Email:             "autolinepanelshop@gmail.com",
		Website:           "www.autolinepanelshop.co.za",
		Address:           "121 Stormvoël Rd, Lindopark, Pretoria",
		BankName:          "FNB",
		AccountName:       "AutoLine Panel Shop",
		BranchCode:        "250655",
		AccountNumber:     "63167334829",
		QuoteValidityDays: 7,
		WarrantyMonths:    6,
	}
}

func testDocument(kind domain.DocumentType) *domain.Document {
	doc := &domain.Document{
		DocumentNumber:   domain.FormatDocumentNumber(kind, 2026, 12),
		CustomerName:     "Naledi Mahlangu",
		CustomerPhone:    "0827654321",
		CarModel:         "Hyundai i20",
		VehicleRegNumber: "GP 55 XY",
		DocumentDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		DocumentType:     kind,
		Status:           kind.DefaultStatus(),
		Items: []domain.RepairItem{
			{Category: domain.CategoryBumperRepair, Description: "front bumper", Amount: decimal.NewFromInt(1200)},
			domain.LabourItem(decimal.NewFromInt(500)),
		},
	}
	doc.Recalculate()
	return doc
}

func TestBuildLayout_Invoice(t *testing.T) {
	doc := testDocument(domain.DocumentTypeInvoice)
	doc.Status = domain.InvoiceStatusPaid

	l := render.BuildLayout(doc, testShop())

	assert.Equal(t, "INVOICE", l.Title)
	assert.Equal(t, "Invoice To:", l.ToLabel)
	assert.Equal(t, []string{"Naledi Mahlangu", "0827654321", "Vehicle: Hyundai i20", "Reg: GP 55 XY"}, l.To)
	assert.Contains(t, l.Details, render.Field{Label: "Invoice Number", Value: "INV-2026-0012"})
	assert.Contains(t, l.Details, render.Field{Label: "Date", Value: "14 March 2026"})
	assert.Contains(t, l.Details, render.Field{Label: "Status", Value: "PAID"})
	assert.Equal(t, "Total: R 1,700.00", l.Total)
	require.Len(t, l.Rows, 2)
	assert.Equal(t, render.Row{Title: "Bumper Repair", Description: "front bumper", Amount: "R 1,200.00"}, l.Rows[0])
	assert.Equal(t, "Labour", l.Rows[1].Title)
	assert.Equal(t, "INV-2026-0012", l.PaymentReference)
	assert.Contains(t, l.Banking, render.Field{Label: "Payment Reference", Value: "INV-2026-0012"})
	assert.Equal(t, "This invoice is valid for 7 days from the date of issue", l.Terms[0])
	assert.Len(t, l.Terms, 7)
	assert.Equal(t, "Invoice-INV-2026-0012.pdf", l.Filename)
}

func TestBuildLayout_Quote(t *testing.T) {
	doc := testDocument(domain.DocumentTypeQuote)
	doc.VehicleRegNumber = ""

	l := render.BuildLayout(doc, testShop())

	assert.Equal(t, "QUOTE", l.Title)
	assert.Equal(t, "Quote To:", l.ToLabel)
	assert.Equal(t, "Quote Details:", l.DetailsLabel)
	assert.Len(t, l.To, 3)
	for _, f := range l.Details {
		assert.NotEqual(t, "Status", f.Label)
	}
	assert.Equal(t, "Quote-QUO-2026-0012.pdf", l.Filename)
}

func TestBuildLayout_SummaryFallback(t *testing.T) {
	doc := testDocument(domain.DocumentTypeInvoice)
	doc.Items = nil
	doc.RepairType = "Paint Job"
	doc.Description = "full respray"
	doc.TotalAmount = decimal.RequireFromString("8500.50")

	l := render.BuildLayout(doc, testShop())

	require.Len(t, l.Rows, 1)
	assert.Equal(t, render.Row{Title: "Paint Job", Description: "full respray", Amount: "R 8,500.50"}, l.Rows[0])
	assert.Equal(t, "Total: R 8,500.50", l.Total)
}

func TestPDF(t *testing.T) {
	for _, kind := range []domain.DocumentType{domain.DocumentTypeInvoice, domain.DocumentTypeQuote} {
		t.Run(string(kind), func(t *testing.T) {
			out, err := render.PDF(render.BuildLayout(testDocument(kind), testShop()))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Greater(t, len(out), 1000)
		})
	}
}
