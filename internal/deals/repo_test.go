package deals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

func setupDealsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	deals := `
CREATE TABLE IF NOT EXISTS deals (
  id TEXT PRIMARY KEY,
  farmer_id TEXT,
  farmer_name TEXT NOT NULL,
  location TEXT NOT NULL,
  crop TEXT NOT NULL,
  quantity TEXT NOT NULL,
  ask_price TEXT NOT NULL,
  harvest_date TEXT NOT NULL DEFAULT '',
  transport_date TEXT NOT NULL DEFAULT '',
  listed_on TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'New',
  accepted_by TEXT,
  dealer_name TEXT,
  accepted_at DATETIME,
  accepted_at_str TEXT,
  declined_by TEXT,
  declined_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	historyEntries := `
CREATE TABLE IF NOT EXISTS history_entries (
  id TEXT PRIMARY KEY,
  dealer_uid TEXT NOT NULL,
  deal_id TEXT NOT NULL,
  farmer_id TEXT,
  farmer_name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  crop TEXT NOT NULL,
  quantity TEXT NOT NULL,
  final_price TEXT NOT NULL,
  harvest_date TEXT NOT NULL DEFAULT '',
  transport_date TEXT NOT NULL DEFAULT '',
  dealer_name TEXT NOT NULL,
  accepted_at_str TEXT,
  status TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(deals).Error)
	require.NoError(t, db.Exec(historyEntries).Error)
	return db
}

func createDeal(t *testing.T, db *gorm.DB, crop string, status enums.DealStatus, created time.Time) *models.Deal {
	t.Helper()

	farmerID := uuid.New()
	deal := &models.Deal{
		ID:            uuid.New(),
		FarmerID:      &farmerID,
		FarmerName:    "Test Farmer",
		Location:      "Pune, Maharashtra",
		Crop:          crop,
		Quantity:      "50 qtl",
		AskPrice:      "₹2,000/qtl",
		HarvestDate:   "1 Nov 2026",
		TransportDate: "4 Nov 2026",
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}

func TestRepositoryListOpen_pagination(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createDeal(t, db, "Wheat", enums.DealStatusNew, now.Add(-2*time.Hour))
	createDeal(t, db, "Onion", enums.DealStatusNegotiating, now.Add(-time.Hour))
	createDeal(t, db, "Tomato", enums.DealStatusNew, now)
	createDeal(t, db, "Accepted Crop", enums.DealStatusAccepted, now)

	list, err := repo.ListOpen(context.Background(), pagination.Params{Limit: 2}, OpenDealFilters{})
	require.NoError(t, err)
	require.Len(t, list.Deals, 2)
	assert.Equal(t, "Tomato", list.Deals[0].Crop)
	assert.Equal(t, "Onion", list.Deals[1].Crop)
	assert.NotEmpty(t, list.NextCursor)

	second, err := repo.ListOpen(context.Background(), pagination.Params{Limit: 2, Cursor: list.NextCursor}, OpenDealFilters{})
	require.NoError(t, err)
	require.Len(t, second.Deals, 1)
	assert.Equal(t, "Wheat", second.Deals[0].Crop)
	assert.Empty(t, second.NextCursor)
}

func TestRepositoryListOpen_ascendingOrder(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createDeal(t, db, "Oldest", enums.DealStatusNew, now.Add(-time.Hour))
	createDeal(t, db, "Newest", enums.DealStatusNew, now)

	list, err := repo.ListOpen(context.Background(), pagination.Params{Limit: 1}, OpenDealFilters{Order: ListOrderAsc})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)
	assert.Equal(t, "Oldest", list.Deals[0].Crop)

	second, err := repo.ListOpen(context.Background(), pagination.Params{Limit: 1, Cursor: list.NextCursor}, OpenDealFilters{Order: ListOrderAsc})
	require.NoError(t, err)
	require.Len(t, second.Deals, 1)
	assert.Equal(t, "Newest", second.Deals[0].Crop)
}

func TestRepositoryListOpen_statusFilter(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	createDeal(t, db, "Fresh", enums.DealStatusNew, now)
	createDeal(t, db, "Haggling", enums.DealStatusNegotiating, now.Add(-time.Minute))

	status := enums.DealStatusNegotiating
	list, err := repo.ListOpen(context.Background(), pagination.Params{Limit: 10}, OpenDealFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)
	assert.Equal(t, "Haggling", list.Deals[0].Crop)
}

func TestRepositoryListByFarmer(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	mine := createDeal(t, db, "Mine", enums.DealStatusDeclined, now)
	createDeal(t, db, "Other", enums.DealStatusNew, now)

	list, err := repo.ListByFarmer(context.Background(), *mine.FarmerID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Deals, 1)
	assert.Equal(t, "Mine", list.Deals[0].Crop)
	assert.Equal(t, enums.DealStatusDeclined, list.Deals[0].Status)
}

func TestRepositoryUpdateAndHistory(t *testing.T) {
	db := setupDealsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	deal := createDeal(t, db, "Cotton", enums.DealStatusNew, now)
	dealerID := uuid.New()

	require.NoError(t, repo.Update(context.Background(), deal.ID, map[string]any{
		"status":      enums.DealStatusAccepted,
		"accepted_by": dealerID,
		"dealer_name": "AgriCorp Traders",
	}))

	entry := &models.HistoryEntry{
		ID:         uuid.New(),
		DealerUID:  dealerID,
		DealID:     deal.ID,
		FarmerID:   deal.FarmerID,
		FarmerName: deal.FarmerName,
		Crop:       deal.Crop,
		Quantity:   deal.Quantity,
		FinalPrice: deal.AskPrice,
		DealerName: "AgriCorp Traders",
		Status:     enums.HistoryStatusCompleted,
		CreatedAt:  now,
	}
	_, err := repo.CreateHistoryEntry(context.Background(), entry)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DealStatusAccepted, reloaded.Status)
	require.NotNil(t, reloaded.DealerName)
	assert.Equal(t, "AgriCorp Traders", *reloaded.DealerName)
}
