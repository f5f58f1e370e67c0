package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/outbox"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	deals := `
CREATE TABLE IF NOT EXISTS deals (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
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
	markers := `
CREATE TABLE IF NOT EXISTS seed_markers (
  key TEXT PRIMARY KEY,
  seeded_at DATETIME
);`
	require.NoError(t, db.Exec(deals).Error)
	require.NoError(t, db.Exec(markers).Error)
	return db
}

func TestSeedDemoDealsWritesOnce(t *testing.T) {
	db := setupSeedTestDB(t)
	events := &recordingOutbox{}
	svc, err := NewService(sqliteTxRunner{db: db}, events, nil)
	require.NoError(t, err)

	seeded, err := svc.SeedDemoDeals(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)

	var count int64
	require.NoError(t, db.Model(&models.Deal{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)

	var open int64
	require.NoError(t, db.Model(&models.Deal{}).
		Where("status IN ?", enums.OpenDealStatuses).
		Count(&open).Error)
	assert.EqualValues(t, 6, open)

	require.Len(t, events.events, 1)
	assert.Equal(t, enums.EventDealsSeeded, events.events[0].EventType)
}

func TestSeedDemoDealsIsIdempotent(t *testing.T) {
	db := setupSeedTestDB(t)
	events := &recordingOutbox{}
	svc, err := NewService(sqliteTxRunner{db: db}, events, nil)
	require.NoError(t, err)

	first, err := svc.SeedDemoDeals(context.Background())
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.SeedDemoDeals(context.Background())
	require.NoError(t, err)
	assert.False(t, second)

	var count int64
	require.NoError(t, db.Model(&models.Deal{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
	assert.Len(t, events.events, 1)
}
