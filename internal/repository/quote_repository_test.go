package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQuoteRepository_CreateWithUploads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	quotes := repository.NewQuoteRepository(db)
	uploads := repository.NewUploadRepository(db)
	ctx := context.Background()

	claimed := &domain.Upload{StoragePath: "quotes/a.jpg", URL: "http://localhost/api/uploads/quotes/a.jpg", ContentType: "image/jpeg", Size: 10}
	other := &domain.Upload{StoragePath: "quotes/b.jpg", URL: "http://localhost/api/uploads/quotes/b.jpg", ContentType: "image/jpeg", Size: 10}
	require.NoError(t, uploads.Create(ctx, claimed))
	require.NoError(t, uploads.Create(ctx, other))

	quote := &domain.Quote{
		CustomerName:      "Lerato",
		Phone:             "0724445555",
		CarModel:          "Mazda 2",
		DamageDescription: "Dented fender",
		Status:            domain.QuoteStatusPending,
	}
	quote.SetImages([]string{claimed.URL})
	require.NoError(t, quotes.CreateWithUploads(ctx, quote, []string{claimed.URL}))

	got, err := quotes.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{claimed.URL}, got.Images())

	list, err := uploads.ListByQuote(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, claimed.ID, list[0].ID)

	unclaimed, err := uploads.ListUnclaimedBefore(ctx, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, unclaimed, 1)
	assert.Equal(t, other.ID, unclaimed[0].ID)
}

func TestQuoteRepository_CreateWithUploadsRejectsClaimedUpload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	quotes := repository.NewQuoteRepository(db)
	uploads := repository.NewUploadRepository(db)
	ctx := context.Background()

	photo := &domain.Upload{StoragePath: "quotes/c.jpg", URL: "http://localhost/api/uploads/quotes/c.jpg", ContentType: "image/jpeg", Size: 10}
	require.NoError(t, uploads.Create(ctx, photo))

	newQuote := func(name string) *domain.Quote {
		q := &domain.Quote{
			CustomerName:      name,
			Phone:             "0724445555",
			CarModel:          "Mazda 2",
			DamageDescription: "Dented fender",
			Status:            domain.QuoteStatusPending,
		}
		q.SetImages([]string{photo.URL})
		return q
	}

	first := newQuote("Lerato")
	require.NoError(t, quotes.CreateWithUploads(ctx, first, []string{photo.URL}))

	second := newQuote("Sipho")
	err := quotes.CreateWithUploads(ctx, second, []string{photo.URL})
	require.ErrorIs(t, err, repository.ErrUploadsClaimed)

	var count int64
	require.NoError(t, db.Model(&domain.Quote{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the losing quote is rolled back")

	list, err := uploads.ListByQuote(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQuoteRepository_ListAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	first := testutil.CreateTestQuote(t, db, "Ayanda")
	testutil.CreateTestQuote(t, db, "Bongani")

	require.NoError(t, repo.UpdateStatus(ctx, first.ID, domain.QuoteStatusContacted))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), domain.QuoteStatusContacted), gorm.ErrRecordNotFound)

	all, total, err := repo.List(ctx, 1, 10, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	contacted := domain.QuoteStatusContacted
	filtered, total, err := repo.List(ctx, 1, 10, &contacted, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Ayanda", filtered[0].CustomerName)

	searched, _, err := repo.List(ctx, 1, 10, nil, "bong")
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Bongani", searched[0].CustomerName)
}

func TestAdminUserRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAdminUserRepository(db)
	ctx := context.Background()

	user := &domain.AdminUser{Email: " Admin@Shop.co.za ", PasswordHash: "x", DisplayName: "Admin"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "admin@shop.co.za", user.Email)

	got, err := repo.GetByEmail(ctx, "ADMIN@shop.co.za")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, now.Equal(got.LastLoginAt.UTC()))
}
