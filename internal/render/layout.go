// Package render turns documents into their printable form: a Layout that
// describes every block of the page, and a PDF drawn from that layout.
package render

import (
	"fmt"
	"strings"

	"github.com/autoline-panel/shop-api/internal/config"
	"github.com/autoline-panel/shop-api/internal/domain"
)

// Field is a labelled value such as "Date: 14 March 2026"
type Field struct {
	Label string
	Value string
}

// Row is one line of the service table
type Row struct {
	Title       string
	Description string
	Amount      string
}

// Layout is everything printed on a document, already formatted
type Layout struct {
	Title   string
	Shop    Header
	ToLabel string
	To      []string

	DetailsLabel string
	Details      []Field

	Rows  []Row
	Total string

	Terms            []string
	Banking          []Field
	PaymentReference string
	Footer           []string

	Filename string
}

// Header is the shop identity block
type Header struct {
	Name    string
	Tagline string
	Contact string
	Address string
}

// BuildLayout projects a document into its printable layout. It only
// re-displays stored values; the total is never recomputed here.
func BuildLayout(doc *domain.Document, shop *config.ShopConfig) *Layout {
	label := doc.DocumentType.Label()

	l := &Layout{
		Title: strings.ToUpper(label),
		Shop: Header{
			Name:    shop.Name,
			Tagline: shop.Tagline,
			Contact: fmt.Sprintf("Tel: %s | Email: %s", shop.Phone, shop.Email),
			Address: "Address: " + shop.Address,
		},
		ToLabel:      label + " To:",
		DetailsLabel: label + " Details:",
		Total:        "Total: " + domain.FormatZAR(doc.TotalAmount),
		Terms:        terms(doc.DocumentType, shop),
		Banking: []Field{
			{Label: "Bank Name", Value: shop.BankName},
			{Label: "Account Name", Value: shop.AccountName},
			{Label: "Branch Code", Value: shop.BranchCode},
			{Label: "Account Number", Value: shop.AccountNumber},
			{Label: "Payment Reference", Value: doc.DocumentNumber},
		},
		PaymentReference: doc.DocumentNumber,
		Footer: []string{
			fmt.Sprintf("Thank you for choosing %s!", shop.Name),
			"Your trusted partner for quality auto body repair and panel beating services.",
			shop.Website,
		},
		Filename: Filename(doc),
	}

	l.To = []string{doc.CustomerName, doc.CustomerPhone, "Vehicle: " + doc.CarModel}
	if doc.VehicleRegNumber != "" {
		l.To = append(l.To, "Reg: "+doc.VehicleRegNumber)
	}

	l.Details = []Field{
		{Label: label + " Number", Value: doc.DocumentNumber},
		{Label: "Date", Value: doc.DocumentDate.Format("2 January 2006")},
		{Label: "Repair Type", Value: doc.RepairType},
	}
	if doc.DocumentType == domain.DocumentTypeInvoice {
		l.Details = append(l.Details, Field{Label: "Status", Value: strings.ToUpper(doc.StatusLabel())})
	}

	if doc.HasItems() {
		l.Rows = make([]Row, len(doc.Items))
		for i, item := range doc.Items {
			l.Rows[i] = Row{
				Title:       string(item.Category),
				Description: item.Description,
				Amount:      domain.FormatZAR(item.Amount),
			}
		}
	} else {
		// Older records carry only the summary fields
		l.Rows = []Row{{
			Title:       doc.RepairType,
			Description: doc.Description,
			Amount:      domain.FormatZAR(doc.TotalAmount),
		}}
	}

	return l
}

// Filename is the download name, e.g. Invoice-INV-2026-0001.pdf
func Filename(doc *domain.Document) string {
	return fmt.Sprintf("%s-%s.pdf", doc.DocumentType.Label(), doc.DocumentNumber)
}

func terms(kind domain.DocumentType, shop *config.ShopConfig) []string {
	return []string{
		fmt.Sprintf("This %s is valid for %d days from the date of issue", strings.ToLower(kind.Label()), shop.QuoteValidityDays),
		"Payment is due upon completion of work unless otherwise agreed",
		"We accept cash, bank transfer, and card payments",
		fmt.Sprintf("All work carries a %d-month warranty on materials and workmanship", shop.WarrantyMonths),
		"Additional work may be required once vehicle is disassembled",
		"Customer must remove all personal items before drop-off",
		"We are not responsible for items left in the vehicle",
	}
}
