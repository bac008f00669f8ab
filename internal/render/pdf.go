package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const (
	pageMargin  = 15.0
	contentW    = 180.0 // A4 width minus margins
	amountColW  = 40.0
	qrSize      = 28.0
	lineHeight  = 5.0
	headingSize = 12.0
)

// PDF draws the layout onto an A4 page. The payment reference is also
// printed as a QR code next to the banking details.
func PDF(l *Layout) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(fmt.Sprintf("%s %s", l.Title, l.PaymentReference), true)
	pdf.SetCreator(l.Shop.Name, true)
	pdf.AddPage()

	// Core fonts are cp1252; addresses may carry accents
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Shop header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(contentW-amountColW, 10, tr(l.Shop.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(amountColW, 10, l.Title, "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{l.Shop.Tagline, l.Shop.Contact, l.Shop.Address} {
		pdf.CellFormat(contentW, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	divider(pdf)

	// Recipient and details side by side
	top := pdf.GetY()
	half := contentW / 2
	heading(pdf, tr(l.ToLabel), half)
	pdf.SetFont("Arial", "", 10)
	for _, line := range l.To {
		pdf.CellFormat(half, lineHeight, tr(line), "", 2, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	pdf.SetXY(pageMargin+half, top)
	heading(pdf, tr(l.DetailsLabel), half)
	for _, f := range l.Details {
		pdf.SetX(pageMargin + half)
		pdf.SetFont("Arial", "B", 10)
		labelW := pdf.GetStringWidth(f.Label+": ") + 1
		pdf.CellFormat(labelW, lineHeight, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(half-labelW, lineHeight, tr(f.Value), "", 1, "L", false, 0, "")
	}
	if pdf.GetY() < leftBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(4)

	// Service table
	heading(pdf, "Service Details", contentW)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(contentW-amountColW, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountColW, 7, "Amount", "1", 1, "R", true, 0, "")
	for _, row := range l.Rows {
		text := row.Title
		if row.Description != "" && row.Description != row.Title {
			text += "\n" + row.Description
		}
		pdf.SetFont("Arial", "", 10)
		lines := pdf.SplitLines([]byte(tr(text)), contentW-amountColW-2)
		h := float64(len(lines))*lineHeight + 2
		x, y := pdf.GetXY()

		pdf.Rect(x, y, contentW-amountColW, h, "D")
		pdf.MultiCell(contentW-amountColW, lineHeight, tr(text), "", "L", false)
		pdf.SetXY(x+contentW-amountColW, y)
		pdf.CellFormat(amountColW, h, tr(row.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(contentW, 8, tr(l.Total), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	// Terms
	heading(pdf, "Terms & Conditions", contentW)
	pdf.SetFont("Arial", "", 8.5)
	for _, term := range l.Terms {
		pdf.MultiCell(contentW, 4.2, tr("- "+term), "", "L", false)
	}
	pdf.Ln(3)

	// Banking details with the payment reference QR code
	bankTop := pdf.GetY()
	heading(pdf, "Banking Details", contentW-qrSize-5)
	for _, f := range l.Banking {
		pdf.SetFont("Arial", "B", 10)
		labelW := pdf.GetStringWidth(f.Label+": ") + 1
		pdf.CellFormat(labelW, lineHeight, tr(f.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(contentW-qrSize-5-labelW, lineHeight, tr(f.Value), "", 1, "L", false, 0, "")
	}

	if l.PaymentReference != "" {
		qrPng, err := qrcode.Encode(l.PaymentReference, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payment reference: %w", err)
		}
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("payment_ref", imgOptions, bytes.NewReader(qrPng))
		pdf.ImageOptions("payment_ref", pageMargin+contentW-qrSize, bankTop, qrSize, qrSize, false, imgOptions, 0, "")
	}
	if pdf.GetY() < bankTop+qrSize {
		pdf.SetY(bankTop + qrSize)
	}

	// Footer
	divider(pdf)
	pdf.SetFont("Arial", "I", 9)
	for _, line := range l.Footer {
		if line == "" {
			continue
		}
		pdf.CellFormat(contentW, 4.5, tr(line), "", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *gofpdf.Fpdf, text string, w float64) {
	pdf.SetFont("Arial", "B", headingSize)
	pdf.CellFormat(w, 7, text, "", 2, "L", false, 0, "")
}

func divider(pdf *gofpdf.Fpdf) {
	pdf.Ln(2)
	y := pdf.GetY()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(pageMargin, y, pageMargin+contentW, y)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Ln(3)
}
