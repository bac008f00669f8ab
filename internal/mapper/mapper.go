package mapper

import (
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(doc *domain.Document) domain.DocumentDTO {
	items := make([]domain.RepairItemDTO, len(doc.Items))
	for i := range doc.Items {
		items[i] = ToRepairItemDTO(&doc.Items[i])
	}

	return domain.DocumentDTO{
		ID:               doc.ID,
		DocumentNumber:   doc.DocumentNumber,
		QuoteID:          doc.QuoteID,
		SourceDocumentID: doc.SourceDocumentID,
		CustomerName:     doc.CustomerName,
		CustomerPhone:    doc.CustomerPhone,
		CarModel:         doc.CarModel,
		VehicleRegNumber: doc.VehicleRegNumber,
		DocumentDate:     doc.DocumentDate.Format(dateLayout),
		DocumentType:     doc.DocumentType,
		Status:           doc.Status,
		StatusLabel:      doc.StatusLabel(),
		RepairType:       doc.RepairType,
		Description:      doc.Description,
		TotalAmount:      domain.NewAmount(doc.TotalAmount),
		TotalFormatted:   domain.FormatZAR(doc.TotalAmount),
		Items:            items,
		CreatedAt:        formatTimestamp(doc.CreatedAt),
		UpdatedAt:        formatTimestamp(doc.UpdatedAt),
	}
}

// ToRepairItemDTO converts RepairItem to RepairItemDTO
func ToRepairItemDTO(item *domain.RepairItem) domain.RepairItemDTO {
	return domain.RepairItemDTO{
		ID:          item.ID,
		Position:    item.Position,
		RepairType:  string(item.Category),
		Description: item.Description,
		Amount:      domain.NewAmount(item.Amount),
	}
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	return domain.QuoteDTO{
		ID:                quote.ID,
		Name:              quote.CustomerName,
		Phone:             quote.Phone,
		CarModel:          quote.CarModel,
		DamageDescription: quote.DamageDescription,
		Images:            quote.Images(),
		Status:            quote.Status,
		CreatedAt:         formatTimestamp(quote.CreatedAt),
		UpdatedAt:         formatTimestamp(quote.UpdatedAt),
	}
}

// ToUploadDTO converts Upload to UploadDTO
func ToUploadDTO(upload *domain.Upload) domain.UploadDTO {
	return domain.UploadDTO{
		ID:          upload.ID,
		URL:         upload.URL,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Filename:    upload.OriginalFilename,
	}
}

// ToAdminUserDTO converts AdminUser to AdminUserDTO
func ToAdminUserDTO(user *domain.AdminUser) domain.AdminUserDTO {
	dto := domain.AdminUserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
	if user.LastLoginAt != nil {
		dto.LastLoginAt = formatTimestamp(*user.LastLoginAt)
	}
	return dto
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		TargetType:  activity.TargetType,
		TargetID:    activity.TargetID,
		Title:       activity.Title,
		Body:        activity.Body,
		OccurredAt:  formatTimestamp(activity.OccurredAt),
		CreatorName: activity.CreatorName,
	}
}

// ParseDocumentDate parses a YYYY-MM-DD date; empty input yields today's date
func ParseDocumentDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, raw)
}

// ToRepairItems converts request lines to unsaved RepairItems. Unknown
// categories are reported through domain.ErrInvalidRepairCategory.
func ToRepairItems(inputs []domain.RepairItemInput) ([]domain.RepairItem, error) {
	items := make([]domain.RepairItem, 0, len(inputs))
	for _, in := range inputs {
		category, err := domain.ParseRepairCategory(in.RepairType)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.RepairItem{
			Category:    category,
			Description: in.Description,
			Amount:      in.Amount.Decimal,
		})
	}
	return items, nil
}
