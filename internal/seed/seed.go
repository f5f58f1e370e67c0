package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/outbox"
)

// demoDealsMarker keys the one-time demo deal seeding in seed_markers.
const demoDealsMarker = "demo_deals_v1"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sampleDeal struct {
	farmerName string
	location   string
	crop       string
	quantity   string
	askPrice   string
	listedOn   string
	status     enums.DealStatus
}

// The fixed demo listings shown on an empty marketplace.
var sampleDeals = []sampleDeal{
	{"Ramesh Patil", "Pune, Maharashtra", "Wheat", "80 qtl", "₹2,600/qtl", "26 Feb 2026", enums.DealStatusNew},
	{"Suresh Kumar", "Nagpur, Maharashtra", "Soybeans", "50 qtl", "₹4,400/qtl", "25 Feb 2026", enums.DealStatusNew},
	{"Anita Devi", "Nashik, Maharashtra", "Onion", "120 qtl", "₹1,200/qtl", "24 Feb 2026", enums.DealStatusNegotiating},
	{"Vijay Shinde", "Kolhapur, Maharashtra", "Rice", "60 qtl", "₹3,200/qtl", "23 Feb 2026", enums.DealStatusNew},
	{"Pandhari Lokhande", "Amravati, Maharashtra", "Cotton", "30 qtl", "₹7,500/qtl", "22 Feb 2026", enums.DealStatusNegotiating},
	{"Kavita Jadhav", "Aurangabad, Maharashtra", "Maize", "90 qtl", "₹2,100/qtl", "21 Feb 2026", enums.DealStatusNew},
}

// DealsSeededEvent is emitted once when the demo listings are written.
type DealsSeededEvent struct {
	BatchID uuid.UUID `json:"batchId"`
	Count   int       `json:"count"`
}

// Service writes the demo deals exactly once per database.
type Service struct {
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the seeding service.
func NewService(tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{
		tx:     tx,
		outbox: outboxSvc,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// SeedDemoDeals inserts the sample deals unless the marker row already
// exists. The marker insert shares the transaction with the deal writes, so a
// concurrent seeder loses on the primary key and writes nothing.
func (s *Service) SeedDemoDeals(ctx context.Context) (bool, error) {
	seeded := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		marker := models.SeedMarker{Key: demoDealsMarker, SeededAt: s.now().UTC()}
		if err := tx.Create(&marker).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil
			}
			return fmt.Errorf("insert seed marker: %w", err)
		}

		base := s.now().UTC()
		batchID := uuid.New()
		for i, sample := range sampleDeals {
			created := base.Add(-time.Duration(i) * time.Minute)
			deal := models.Deal{
				FarmerName: sample.farmerName,
				Location:   sample.location,
				Crop:       sample.crop,
				Quantity:   sample.quantity,
				AskPrice:   sample.askPrice,
				ListedOn:   sample.listedOn,
				Status:     sample.status,
				CreatedAt:  created,
				UpdatedAt:  created,
			}
			if err := tx.Create(&deal).Error; err != nil {
				return fmt.Errorf("insert sample deal %q: %w", sample.crop, err)
			}
		}

		seeded = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDealsSeeded,
			AggregateType: enums.AggregateDeal,
			AggregateID:   batchID,
			Version:       1,
			Data:          DealsSeededEvent{BatchID: batchID, Count: len(sampleDeals)},
		})
	})
	if err != nil {
		return false, err
	}
	if s.logg != nil {
		if seeded {
			s.logg.Info(ctx, "demo deals seeded")
		} else {
			s.logg.Info(ctx, "demo deals already present, skipping seed")
		}
	}
	return seeded, nil
}
