package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/autoline-panel/shop-api/internal/database"
	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// Every test gets its own database named after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// CreateTestDocument stores a document with one repair line and a labour line
func CreateTestDocument(t *testing.T, db *gorm.DB, kind domain.DocumentType, number string) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		DocumentNumber: number,
		CustomerName:   "Test Customer",
		CustomerPhone:  "0820000000",
		CarModel:       "VW Polo",
		DocumentDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		DocumentType:   kind,
		Status:         kind.DefaultStatus(),
		Items: []domain.RepairItem{
			{Category: domain.CategoryBumperRepair, Description: "rear bumper", Amount: decimal.NewFromInt(1200)},
			domain.LabourItem(decimal.NewFromInt(500)),
		},
	}
	items, err := domain.NormalizeItems(doc.Items)
	require.NoError(t, err)
	doc.Items = items
	doc.Recalculate()

	require.NoError(t, db.Create(doc).Error)
	return doc
}

// CreateTestQuote stores a pending public quote request
func CreateTestQuote(t *testing.T, db *gorm.DB, name string) *domain.Quote {
	t.Helper()

	quote := &domain.Quote{
		CustomerName:      name,
		Phone:             "0831234567",
		CarModel:          "Ford Ranger",
		DamageDescription: "Scratched tailgate",
		Status:            domain.QuoteStatusPending,
	}
	quote.SetImages(nil)
	require.NoError(t, db.Create(quote).Error)
	return quote
}
