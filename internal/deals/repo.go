package deals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateHistoryEntry(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) ListOpen(ctx context.Context, params pagination.Params, filters OpenDealFilters) (*DealList, error) {
	query := r.db.WithContext(ctx).Model(&models.Deal{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	} else {
		query = query.Where("status IN ?", enums.OpenDealStatuses)
	}
	return listDeals(query, params, filters.Order)
}

func (r *repository) ListByFarmer(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*DealList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("farmer_id = ?", farmerID)
	return listDeals(query, params, ListOrderDesc)
}

func listDeals(query *gorm.DB, params pagination.Params, order ListOrder) (*DealList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	ascending := order == ListOrderAsc
	if cursor != nil {
		if ascending {
			query = query.Where(
				"created_at > ? OR (created_at = ? AND id > ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		} else {
			query = query.Where(
				"created_at < ? OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}
	if ascending {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var rows []models.Deal
	if err := query.Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &DealList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	list.Deals = rows
	return list, nil
}
