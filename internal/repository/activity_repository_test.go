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
)

func TestActivityRepository_ListByTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	ctx := context.Background()

	docID := uuid.New()
	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Invoice created", "Status changed", "Converted to quote"} {
		require.NoError(t, repo.Create(ctx, &domain.Activity{
			TargetType: domain.ActivityTargetDocument,
			TargetID:   docID,
			Title:      title,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// same id, other kind of target
	require.NoError(t, repo.Create(ctx, &domain.Activity{
		TargetType: domain.ActivityTargetQuote,
		TargetID:   docID,
		Title:      "Quote request received",
	}))

	got, err := repo.ListByTarget(ctx, domain.ActivityTargetDocument, docID, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Converted to quote", got[0].Title)
	assert.Equal(t, "Invoice created", got[2].Title)

	limited, err := repo.ListByTarget(ctx, domain.ActivityTargetDocument, docID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestActivityRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewActivityRepository(db)
	ctx := context.Background()

	a := &domain.Activity{TargetType: domain.ActivityTargetQuote, TargetID: uuid.New(), Title: "Status changed"}
	require.NoError(t, repo.Create(ctx, a))
	assert.False(t, a.OccurredAt.IsZero())
	assert.NotEqual(t, uuid.Nil, a.ID)

	err := repo.Create(ctx, &domain.Activity{TargetType: "customer", TargetID: uuid.New(), Title: "x"})
	assert.ErrorContains(t, err, "unknown activity target")
}
