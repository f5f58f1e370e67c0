package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/internal/deals"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

type farmerDealLister interface {
	ListByFarmer(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error)
}

// Service projects decision history for both sides of the marketplace.
type Service interface {
	DealerHistory(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*HistoryList, error)
	FarmerHistory(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error)
}

type service struct {
	repo     Repository
	deals    farmerDealLister
	resolver *NameResolver
}

// NewService builds the history projection service.
func NewService(repo Repository, dealRepo farmerDealLister, resolver *NameResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if dealRepo == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("name resolver required")
	}
	return &service{
		repo:     repo,
		deals:    dealRepo,
		resolver: resolver,
	}, nil
}

func (s *service) DealerHistory(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	if dealerUID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.repo.ListByDealer(ctx, dealerUID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealer history")
	}
	for i := range list.Entries {
		list.Entries[i].FarmerName = s.resolver.ResolveFarmerName(ctx, list.Entries[i])
	}
	return list, nil
}

func (s *service) FarmerHistory(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error) {
	if farmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	list, err := s.deals.ListByFarmer(ctx, farmerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list farmer deals")
	}
	return list, nil
}
