package domain

import "fmt"

// Recalculate refreshes the derived fields from the items: total amount,
// summary repair type and summary description. A document without items
// keeps its stored summary fields.
func (d *Document) Recalculate() {
	if len(d.Items) == 0 {
		return
	}
	d.TotalAmount = Total(d.Items)
	d.RepairType = SummaryRepairType(d.Items)
	d.Description = SummaryDescription(d.Items)
}

// ConvertTo builds a new, unsaved Document of the target kind from d. The
// copy gets the given number, fresh item rows and the default status of the
// target kind. d itself is not modified.
func (d *Document) ConvertTo(target DocumentType, number string) (*Document, error) {
	if !target.IsValid() {
		return nil, ErrInvalidDocumentType
	}
	if target == d.DocumentType {
		return nil, ErrSameDocumentType
	}

	sourceID := d.ID
	converted := &Document{
		DocumentNumber:   number,
		SourceDocumentID: &sourceID,
		CustomerName:     d.CustomerName,
		CustomerPhone:    d.CustomerPhone,
		CarModel:         d.CarModel,
		VehicleRegNumber: d.VehicleRegNumber,
		DocumentDate:     d.DocumentDate,
		DocumentType:     target,
		Status:           target.DefaultStatus(),
		RepairType:       d.RepairType,
		Description:      d.Description,
		TotalAmount:      d.TotalAmount,
	}
	if d.QuoteID != nil {
		quoteID := *d.QuoteID
		converted.QuoteID = &quoteID
	}

	converted.Items = make([]RepairItem, len(d.Items))
	for i, item := range d.Items {
		converted.Items[i] = RepairItem{
			Position:    item.Position,
			Category:    item.Category,
			Description: item.Description,
			Amount:      item.Amount,
		}
	}
	converted.Recalculate()
	return converted, nil
}

// StatusLabel is the display status of the document
func (d *Document) StatusLabel() string {
	return StatusLabel(d.DocumentType, d.Status)
}

// HasItems reports whether the document carries line items
func (d *Document) HasItems() bool {
	return len(d.Items) > 0
}

// FormatDocumentNumber renders a document number such as INV-2026-0001
func FormatDocumentNumber(kind DocumentType, year, sequence int) string {
	return fmt.Sprintf("%s-%d-%04d", kind.NumberPrefix(), year, sequence)
}
