package deals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

// Repository defines persistence operations for deals and the history rows
// written alongside dealer decisions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deal *models.Deal) (*models.Deal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateHistoryEntry(ctx context.Context, entry *models.HistoryEntry) (*models.HistoryEntry, error)
	ListOpen(ctx context.Context, params pagination.Params, filters OpenDealFilters) (*DealList, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*DealList, error)
}
