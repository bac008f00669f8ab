package repository_test

import (
	"context"
	"testing"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/autoline-panel/shop-api/internal/repository"
	"github.com/autoline-panel/shop-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNumberSequenceRepository_GetNextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.GetNextNumber(ctx, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("prefixes are independent", func(t *testing.T) {
		got, err := repo.GetNextNumber(ctx, "QUO", 2026)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("years are independent", func(t *testing.T) {
		got, err := repo.GetNextNumber(ctx, "INV", 2027)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	var seq domain.NumberSequence
	require.NoError(t, db.Where("prefix = ? AND year = ?", "INV", 2026).First(&seq).Error)
	assert.Equal(t, 3, seq.LastSequence)
}

func TestNumberSequenceRepository_RollbackWithTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := context.Background()

	_, err := repo.GetNextNumber(ctx, "INV", 2026)
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		got, err := repo.WithTx(tx).GetNextNumber(ctx, "INV", 2026)
		require.NoError(t, err)
		assert.Equal(t, 2, got)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetNextNumber(ctx, "INV", 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, got, "rolled back allocation is reused")
}
