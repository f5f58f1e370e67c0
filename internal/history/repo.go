package history

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

// Repository exposes read operations over the immutable history log.
type Repository interface {
	ListByDealer(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*HistoryList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a history repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByDealer(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.HistoryEntry{}).
		Where("dealer_uid = ?", dealerUID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.HistoryEntry
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &HistoryList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Entries = rows
	return list, nil
}
