package repository_test

import (
	"context"
	"testing"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	doc := testutil.CreateTestDocument(t, db, domain.DocumentTypeInvoice, "INV-2026-0001")

	t.Run("get by id preloads items in position order", func(t *testing.T) {
		got, err := repo.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0001", got.DocumentNumber)
		assert.Equal(t, domain.InvoiceStatusDraft, got.Status)
		require.Len(t, got.Items, 2)
		assert.Equal(t, domain.CategoryBumperRepair, got.Items[0].Category)
		assert.Equal(t, domain.CategoryLabour, got.Items[1].Category)
		assert.True(t, decimal.NewFromInt(1700).Equal(got.TotalAmount))
	})

	t.Run("get by number", func(t *testing.T) {
		got, err := repo.GetByNumber(ctx, "INV-2026-0001")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("duplicate number is rejected", func(t *testing.T) {
		dup := &domain.Document{
			DocumentNumber: "INV-2026-0001",
			CustomerName:   "Someone",
			DocumentDate:   doc.DocumentDate,
			DocumentType:   domain.DocumentTypeInvoice,
			Status:         domain.InvoiceStatusDraft,
		}
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestDocumentRepository_UpdateReplacesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	doc := testutil.CreateTestDocument(t, db, domain.DocumentTypeInvoice, "INV-2026-0002")

	loaded, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)

	loaded.CustomerName = "Renamed Customer"
	loaded.Items, err = domain.AddItem(loaded.Items, domain.RepairItem{
		Category:    domain.CategoryPaintJob,
		Description: "respray door",
		Amount:      decimal.NewFromInt(900),
	})
	require.NoError(t, err)
	loaded.Recalculate()
	require.NoError(t, repo.Update(ctx, loaded))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Customer", got.CustomerName)
	assert.Equal(t, domain.MultipleRepairType, got.RepairType)
	require.Len(t, got.Items, 3)
	assert.Equal(t, domain.CategoryPaintJob, got.Items[1].Category)
	assert.Equal(t, domain.CategoryLabour, got.Items[2].Category)
	assert.True(t, decimal.NewFromInt(2600).Equal(got.TotalAmount))

	var count int64
	require.NoError(t, db.Model(&domain.RepairItem{}).Where("document_id = ?", doc.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestDocumentRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	doc := testutil.CreateTestDocument(t, db, domain.DocumentTypeInvoice, "INV-2026-0003")

	require.NoError(t, repo.UpdateStatus(ctx, doc.ID, domain.InvoiceStatusPaid))
	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), domain.InvoiceStatusPaid), gorm.ErrRecordNotFound)
}

func TestDocumentRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	doc := testutil.CreateTestDocument(t, db, domain.DocumentTypeQuote, "QUO-2026-0001")

	require.NoError(t, repo.Delete(ctx, doc.ID))

	_, err := repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.RepairItem{}).Where("document_id = ?", doc.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, doc.ID), gorm.ErrRecordNotFound)
}

func TestDocumentRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	ctx := context.Background()

	testutil.CreateTestDocument(t, db, domain.DocumentTypeInvoice, "INV-2026-0010")
	testutil.CreateTestDocument(t, db, domain.DocumentTypeInvoice, "INV-2026-0011")
	testutil.CreateTestDocument(t, db, domain.DocumentTypeQuote, "QUO-2026-0010")

	t.Run("all documents", func(t *testing.T) {
		docs, total, err := repo.List(ctx, 1, 10, domain.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, docs, 3)
		for _, d := range docs {
			assert.Len(t, d.Items, 2)
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		docs, total, err := repo.List(ctx, 1, 10, domain.DocumentFilters{DocumentType: domain.DocumentTypeQuote})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, docs, 1)
		assert.Equal(t, "QUO-2026-0010", docs[0].DocumentNumber)
	})

	t.Run("pagination", func(t *testing.T) {
		docs, total, err := repo.List(ctx, 2, 2, domain.DocumentFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, docs, 1)
	})

	t.Run("search by number", func(t *testing.T) {
		docs, total, err := repo.List(ctx, 1, 10, domain.DocumentFilters{Search: "inv-2026-0011"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, docs, 1)
		assert.Equal(t, "INV-2026-0011", docs[0].DocumentNumber)
	})
}
