package deals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/outbox"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines deal lifecycle operations beyond repository reads.
type Service interface {
	CreateDeal(ctx context.Context, input CreateDealInput) (*models.Deal, error)
	Decide(ctx context.Context, input DecisionInput) (*models.Deal, error)
	GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	ListOpenDeals(ctx context.Context, params pagination.Params, filters OpenDealFilters) (*DealList, error)
	ListFarmerDeals(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*DealList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a deal service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		now:    time.Now,
	}, nil
}

// Client-facing date strings ("26 Feb 2026") are rendered in Indian local
// time to match what the mobile clients produce.
var indiaTZ = time.FixedZone("IST", 5*3600+30*60)

func formatDisplayDate(t time.Time) string {
	return t.In(indiaTZ).Format("02 Jan 2006")
}

func (s *service) CreateDeal(ctx context.Context, input CreateDealInput) (*models.Deal, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	missing := missingTermFields(input)
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal terms incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	now := s.now().UTC()
	farmerID := input.FarmerID
	deal := &models.Deal{
		FarmerID:      &farmerID,
		FarmerName:    strings.TrimSpace(input.FarmerName),
		Location:      strings.TrimSpace(input.Location),
		Crop:          strings.TrimSpace(input.Crop),
		Quantity:      strings.TrimSpace(input.Quantity),
		AskPrice:      strings.TrimSpace(input.AskPrice),
		HarvestDate:   strings.TrimSpace(input.HarvestDate),
		TransportDate: strings.TrimSpace(input.TransportDate),
		ListedOn:      formatDisplayDate(now),
		Status:        enums.DealStatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, deal)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deal")
		}
		deal = created

		event := outbox.DomainEvent{
			EventType:     enums.EventDealCreated,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.FarmerID, Role: enums.ActorRoleFarmer.String()},
			Data: DealCreatedEvent{
				DealID:   deal.ID,
				FarmerID: deal.FarmerID,
				Crop:     deal.Crop,
				Status:   deal.Status,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

func missingTermFields(input CreateDealInput) []string {
	missing := []string{}
	for field, value := range map[string]string{
		"location":      input.Location,
		"crop":          input.Crop,
		"quantity":      input.Quantity,
		"askPrice":      input.AskPrice,
		"harvestDate":   input.HarvestDate,
		"transportDate": input.TransportDate,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func (s *service) Decide(ctx context.Context, input DecisionInput) (*models.Deal, error) {
	if input.DealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Decision != enums.DealDecisionAccept && input.Decision != enums.DealDecisionDecline {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown decision")
	}

	var decided *models.Deal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deal, err := repo.FindByID(ctx, input.DealID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
		}
		if !deal.Status.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deal already decided").
				WithDetails(map[string]any{"status": deal.Status})
		}

		now := s.now().UTC()
		updates, entry := s.buildDecision(deal, input, now)

		if err := repo.Update(ctx, deal.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deal status")
		}
		stored, err := repo.CreateHistoryEntry(ctx, entry)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision history")
		}

		applyDecision(deal, input, now)
		decided = deal

		event := outbox.DomainEvent{
			EventType:     enums.EventDealDecided,
			AggregateType: enums.AggregateDeal,
			AggregateID:   deal.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.DealerID, Role: enums.ActorRoleDealer.String()},
			Data: DealDecidedEvent{
				DealID:         deal.ID,
				FarmerID:       deal.FarmerID,
				DealerID:       input.DealerID,
				Decision:       input.Decision,
				Status:         deal.Status,
				HistoryEntryID: stored.ID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// buildDecision maps the dealer's action onto the deal row updates and the
// immutable history snapshot written in the same transaction.
func (s *service) buildDecision(deal *models.Deal, input DecisionInput, now time.Time) (map[string]any, *models.HistoryEntry) {
	entry := &models.HistoryEntry{
		DealerUID:     input.DealerID,
		DealID:        deal.ID,
		FarmerID:      deal.FarmerID,
		FarmerName:    deal.FarmerName,
		Location:      deal.Location,
		Crop:          deal.Crop,
		Quantity:      deal.Quantity,
		FinalPrice:    deal.AskPrice,
		HarvestDate:   deal.HarvestDate,
		TransportDate: deal.TransportDate,
		DealerName:    input.DealerName,
		CreatedAt:     now,
	}

	if input.Decision == enums.DealDecisionAccept {
		acceptedAtStr := formatDisplayDate(now)
		entry.Status = enums.HistoryStatusCompleted
		entry.AcceptedAtStr = &acceptedAtStr
		return map[string]any{
			"status":          enums.DealStatusAccepted,
			"accepted_by":     input.DealerID,
			"dealer_name":     input.DealerName,
			"accepted_at":     now,
			"accepted_at_str": acceptedAtStr,
			"updated_at":      now,
		}, entry
	}

	entry.Status = enums.HistoryStatusDeclined
	return map[string]any{
		"status":      enums.DealStatusDeclined,
		"declined_by": input.DealerID,
		"declined_at": now,
		"updated_at":  now,
	}, entry
}

func applyDecision(deal *models.Deal, input DecisionInput, now time.Time) {
	dealerID := input.DealerID
	if input.Decision == enums.DealDecisionAccept {
		acceptedAtStr := formatDisplayDate(now)
		dealerName := input.DealerName
		deal.Status = enums.DealStatusAccepted
		deal.AcceptedBy = &dealerID
		deal.DealerName = &dealerName
		deal.AcceptedAt = &now
		deal.AcceptedAtStr = &acceptedAtStr
	} else {
		deal.Status = enums.DealStatusDeclined
		deal.DeclinedBy = &dealerID
		deal.DeclinedAt = &now
	}
	deal.UpdatedAt = now
}

func (s *service) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	return deal, nil
}

func (s *service) ListOpenDeals(ctx context.Context, params pagination.Params, filters OpenDealFilters) (*DealList, error) {
	if filters.Status != nil && !filters.Status.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status filter must be an open status")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.ListOpen(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list open deals")
	}
	return list, nil
}

func (s *service) ListFarmerDeals(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*DealList, error) {
	if farmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.ListByFarmer(ctx, farmerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmer deals")
	}
	return list, nil
}
