package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/autoline-panel/shop-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository hands out document sequence numbers. Quotes and
// invoices keep separate counters, keyed by prefix and year.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *NumberSequenceRepository) WithTx(tx *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: tx}
}

// GetNextNumber bumps the counter for prefix/year and returns the new value.
// The first number of a year is 1. The upsert holds the row lock until the
// surrounding transaction ends, so a rolled back allocation is handed out again.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, prefix string, year int) (int, error) {
	var next []int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := domain.NumberSequence{Prefix: prefix, Year: year, LastSequence: 1}
		bump := clause.OnConflict{
			Columns: []clause.Column{{Name: "prefix"}, {Name: "year"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_sequence": gorm.Expr("? + 1", clause.Column{Table: clause.CurrentTable, Name: "last_sequence"}),
				"updated_at":    time.Now(),
			}),
		}
		if err := tx.Clauses(bump).Create(&seq).Error; err != nil {
			return fmt.Errorf("failed to bump %s-%d sequence: %w", prefix, year, err)
		}

		if err := tx.Model(&domain.NumberSequence{}).
			Where("prefix = ? AND year = ?", prefix, year).
			Pluck("last_sequence", &next).Error; err != nil {
			return fmt.Errorf("failed to read %s-%d sequence: %w", prefix, year, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(next) != 1 {
		return 0, fmt.Errorf("sequence %s-%d not found after upsert", prefix, year)
	}
	return next[0], nil
}
