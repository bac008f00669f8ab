package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an ID when the caller did not
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Document is a quote or an invoice with its repair line items
type Document struct {
	BaseModel
	DocumentNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex;column:document_number"`
	QuoteID          *uuid.UUID      `gorm:"type:uuid;index;column:quote_id"`
	SourceDocumentID *uuid.UUID      `gorm:"type:uuid;index;column:source_document_id"`
	CustomerName     string          `gorm:"type:varchar(200);not null;column:customer_name"`
	CustomerPhone    string          `gorm:"type:varchar(30);column:customer_phone"`
	CarModel         string          `gorm:"type:varchar(200);column:car_model"`
	VehicleRegNumber string          `gorm:"type:varchar(30);column:vehicle_reg_number"`
	DocumentDate     time.Time       `gorm:"type:date;not null;column:document_date"`
	DocumentType     DocumentType    `gorm:"type:varchar(20);not null;index;column:document_type"`
	Status           InvoiceStatus   `gorm:"type:varchar(20);index"`
	RepairType       string          `gorm:"type:varchar(100);column:repair_type"`
	Description      string          `gorm:"type:text"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;column:total_amount"`
	Items            []RepairItem    `gorm:"foreignKey:DocumentID"`
}

// RepairItem is one billable line of a Document
type RepairItem struct {
	BaseModel
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index;column:document_id"`
	Position    int             `gorm:"not null;default:0"`
	Category    RepairCategory  `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

// Quote is a public quote request submitted through the website
type Quote struct {
	BaseModel
	CustomerName      string         `gorm:"type:varchar(200);not null;column:customer_name"`
	Phone             string         `gorm:"type:varchar(30);not null"`
	CarModel          string         `gorm:"type:varchar(200);not null;column:car_model"`
	DamageDescription string         `gorm:"type:text;column:damage_description"`
	ImageURLs         datatypes.JSON `gorm:"column:image_urls"`
	Status            QuoteStatus    `gorm:"type:varchar(20);not null;index"`
}

// Images decodes the stored image URL list
func (q *Quote) Images() []string {
	if len(q.ImageURLs) == 0 {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal(q.ImageURLs, &urls); err != nil {
		return []string{}
	}
	return urls
}

// SetImages stores the image URL list
func (q *Quote) SetImages(urls []string) {
	if urls == nil {
		urls = []string{}
	}
	b, _ := json.Marshal(urls)
	q.ImageURLs = datatypes.JSON(b)
}

// Upload is a customer image held in object storage. QuoteID stays nil until a
// quote submission claims it.
type Upload struct {
	BaseModel
	StoragePath      string     `gorm:"type:varchar(500);not null;column:storage_path"`
	URL              string     `gorm:"type:varchar(1000);not null;uniqueIndex"`
	ContentType      string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size             int64      `gorm:"not null"`
	OriginalFilename string     `gorm:"type:varchar(255);column:original_filename"`
	QuoteID          *uuid.UUID `gorm:"type:uuid;index;column:quote_id"`
}

// AdminUser is a back-office account
type AdminUser struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null;column:password_hash"`
	DisplayName  string     `gorm:"type:varchar(200);column:display_name"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

// NumberSequence tracks the last issued document number per prefix and year
type NumberSequence struct {
	Prefix       string    `gorm:"type:varchar(10);primaryKey"`
	Year         int       `gorm:"primaryKey;autoIncrement:false"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// ActivityTargetType is the kind of entity an activity belongs to
type ActivityTargetType string

const (
	ActivityTargetDocument ActivityTargetType = "document"
	ActivityTargetQuote    ActivityTargetType = "quote"
)

// Activity is an audit trail entry written by the services
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(20);not null;index;column:target_type"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:varchar(2000)"`
	OccurredAt  time.Time          `gorm:"not null;index;column:occurred_at"`
	CreatorID   string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name"`
}
