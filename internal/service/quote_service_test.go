package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/service"
	"github.com/autoline-panel/shop-api/internal/storage"
	"github.com/autoline-panel/shop-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type quoteFixture struct {
	quotes  *service.QuoteService
	uploads *service.UploadService
}

func createQuoteFixture(t *testing.T, db *gorm.DB) quoteFixture {
	t.Helper()
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/api/uploads")
	require.NoError(t, err)

	uploadRepo := repository.NewUploadRepository(db)
	activities := service.NewActivityService(repository.NewActivityRepository(db), logger)

	return quoteFixture{
		quotes:  service.NewQuoteService(repository.NewQuoteRepository(db), uploadRepo, activities, 5, logger),
		uploads: service.NewUploadService(uploadRepo, store, 5<<20, 5, logger),
	}
}

func quoteRequest(images ...string) *domain.CreateQuoteRequest {
	return &domain.CreateQuoteRequest{
		Name:              "Sipho Ndlovu",
		Phone:             "0825551234",
		CarModel:          "BMW 320i",
		DamageDescription: "Front bumper cracked after a parking incident",
		Images:            images,
	}
}

func TestQuoteService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := createQuoteFixture(t, db)
	ctx := context.Background()

	t.Run("without images", func(t *testing.T) {
		quote, err := f.quotes.Create(ctx, quoteRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusPending, quote.Status)
		assert.Equal(t, "Sipho Ndlovu", quote.Name)
		assert.Empty(t, quote.Images)

		activities, err := f.quotes.ListActivities(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, activities, 1)
		assert.Equal(t, "Website", activities[0].CreatorName)
	})

	t.Run("claims uploaded images", func(t *testing.T) {
		uploaded, err := f.uploads.UploadImages(ctx, []service.ImageFile{
			{Filename: "front.png", Data: bytes.NewReader(pngHeader)},
		})
		require.NoError(t, err)
		require.Len(t, uploaded, 1)

		quote, err := f.quotes.Create(ctx, quoteRequest(uploaded[0].URL, uploaded[0].URL))
		require.NoError(t, err)
		assert.Equal(t, []string{uploaded[0].URL}, quote.Images)

		var upload domain.Upload
		require.NoError(t, db.First(&upload, "id = ?", uploaded[0].ID).Error)
		require.NotNil(t, upload.QuoteID)
		assert.Equal(t, quote.ID, *upload.QuoteID)

		t.Run("claimed image cannot be reused", func(t *testing.T) {
			_, err := f.quotes.Create(ctx, quoteRequest(uploaded[0].URL))
			assert.ErrorIs(t, err, service.ErrUnknownImage)
		})
	})

	t.Run("foreign image url is rejected", func(t *testing.T) {
		_, err := f.quotes.Create(ctx, quoteRequest("https://example.com/car.jpg"))
		assert.ErrorIs(t, err, service.ErrUnknownImage)
	})

	t.Run("too many images", func(t *testing.T) {
		urls := []string{"https://a/1", "https://a/2", "https://a/3", "https://a/4", "https://a/5", "https://a/6"}
		_, err := f.quotes.Create(ctx, quoteRequest(urls...))
		assert.ErrorIs(t, err, service.ErrTooManyImages)
	})
}

func TestQuoteService_ListAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := createQuoteFixture(t, db)
	ctx := adminContext()

	first := testutil.CreateTestQuote(t, db, "Anele Khumalo")
	testutil.CreateTestQuote(t, db, "Pieter van Wyk")

	t.Run("status moves and is listed", func(t *testing.T) {
		updated, err := f.quotes.UpdateStatus(ctx, first.ID, "contacted")
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusContacted, updated.Status)

		page, err := f.quotes.List(ctx, 1, 20, "contacted", "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)

		all, err := f.quotes.List(ctx, 1, 20, "", "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), all.Total)
	})

	t.Run("legacy capitalised status is accepted", func(t *testing.T) {
		updated, err := f.quotes.UpdateStatus(ctx, first.ID, "Pending")
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusPending, updated.Status)
	})

	t.Run("completed can be reopened", func(t *testing.T) {
		_, err := f.quotes.UpdateStatus(ctx, first.ID, "completed")
		require.NoError(t, err)
		updated, err := f.quotes.UpdateStatus(ctx, first.ID, "pending")
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusPending, updated.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := f.quotes.UpdateStatus(ctx, first.ID, "archived")
		assert.ErrorIs(t, err, service.ErrInvalidStatus)

		_, err = f.quotes.List(ctx, 1, 20, "archived", "")
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("unknown quote", func(t *testing.T) {
		_, err := f.quotes.UpdateStatus(ctx, uuid.New(), "contacted")
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)

		_, err = f.quotes.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)
	})
}
