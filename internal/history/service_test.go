package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/pagination"
)

type stubHistoryRepo struct {
	entries []models.HistoryEntry
	err     error
}

func (s *stubHistoryRepo) ListByDealer(ctx context.Context, dealerUID uuid.UUID, params pagination.Params) (*HistoryList, error) {
	if s.err != nil {
		return nil, s.err
	}
	matched := []models.HistoryEntry{}
	for _, entry := range s.entries {
		if entry.DealerUID == dealerUID {
			matched = append(matched, entry)
		}
	}
	return &HistoryList{Entries: matched}, nil
}

type stubProfileReader struct {
	byID    map[uuid.UUID]*models.FarmerProfile
	byPhone map[string]*models.FarmerProfile
}

func (s *stubProfileReader) FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	if profile, ok := s.byID[userID]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileReader) FindFarmerProfileByPhone(ctx context.Context, phone string) (*models.FarmerProfile, error) {
	if profile, ok := s.byPhone[phone]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubFarmerDealLister struct {
	list *deals.DealList
	err  error
}

func (s *stubFarmerDealLister) ListByFarmer(ctx context.Context, farmerID uuid.UUID, params pagination.Params) (*deals.DealList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func entryFor(dealerUID uuid.UUID, farmerID *uuid.UUID, farmerName string) models.HistoryEntry {
	return models.HistoryEntry{
		ID:         uuid.New(),
		DealerUID:  dealerUID,
		DealID:     uuid.New(),
		FarmerID:   farmerID,
		FarmerName: farmerName,
		Crop:       "Onion",
		Quantity:   "80 qtl",
		FinalPrice: "₹2,600/qtl",
		DealerName: "AgriCorp Traders",
		Status:     enums.HistoryStatusCompleted,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestDealerHistoryResolvesNameByProfileID(t *testing.T) {
	dealerUID := uuid.New()
	farmerID := uuid.New()
	repo := &stubHistoryRepo{entries: []models.HistoryEntry{
		entryFor(dealerUID, &farmerID, "9876543210@krishimitra.com"),
	}}
	profiles := &stubProfileReader{
		byID: map[uuid.UUID]*models.FarmerProfile{
			farmerID: {UserID: farmerID, Name: "Ramesh Kumar", Phone: "9876543210"},
		},
	}
	svc, err := NewService(repo, &stubFarmerDealLister{list: &deals.DealList{}}, NewNameResolver(profiles))
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	list, err := svc.DealerHistory(context.Background(), dealerUID, pagination.Params{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(list.Entries) != 1 {
		t.Fatalf("expected one entry got %d", len(list.Entries))
	}
	if list.Entries[0].FarmerName != "Ramesh Kumar" {
		t.Fatalf("expected resolved name, got %q", list.Entries[0].FarmerName)
	}
}

func TestDealerHistoryResolvesNameByPhone(t *testing.T) {
	dealerUID := uuid.New()
	repo := &stubHistoryRepo{entries: []models.HistoryEntry{
		entryFor(dealerUID, nil, "9876543210@krishimitra.com"),
	}}
	profiles := &stubProfileReader{
		byPhone: map[string]*models.FarmerProfile{
			"9876543210": {UserID: uuid.New(), Name: "Sita Devi", Phone: "9876543210"},
		},
	}
	svc, _ := NewService(repo, &stubFarmerDealLister{list: &deals.DealList{}}, NewNameResolver(profiles))

	list, err := svc.DealerHistory(context.Background(), dealerUID, pagination.Params{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if list.Entries[0].FarmerName != "Sita Devi" {
		t.Fatalf("expected phone-resolved name, got %q", list.Entries[0].FarmerName)
	}
}

func TestDealerHistoryFallsBackToLiteral(t *testing.T) {
	dealerUID := uuid.New()
	missingID := uuid.New()
	repo := &stubHistoryRepo{entries: []models.HistoryEntry{
		entryFor(dealerUID, &missingID, "Local Farmer"),
	}}
	svc, _ := NewService(repo, &stubFarmerDealLister{list: &deals.DealList{}}, NewNameResolver(&stubProfileReader{}))

	list, err := svc.DealerHistory(context.Background(), dealerUID, pagination.Params{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if list.Entries[0].FarmerName != "Local Farmer" {
		t.Fatalf("expected literal fallback, got %q", list.Entries[0].FarmerName)
	}
}

func TestDealerHistoryRequiresIdentity(t *testing.T) {
	svc, _ := NewService(&stubHistoryRepo{}, &stubFarmerDealLister{list: &deals.DealList{}}, NewNameResolver(&stubProfileReader{}))

	_, err := svc.DealerHistory(context.Background(), uuid.Nil, pagination.Params{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized got %v", err)
	}
}

func TestFarmerHistoryDelegatesToDeals(t *testing.T) {
	farmerID := uuid.New()
	expected := &deals.DealList{Deals: []models.Deal{{ID: uuid.New(), Crop: "Wheat", Status: enums.DealStatusDeclined}}}
	svc, _ := NewService(&stubHistoryRepo{}, &stubFarmerDealLister{list: expected}, NewNameResolver(&stubProfileReader{}))

	list, err := svc.FarmerHistory(context.Background(), farmerID, pagination.Params{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(list.Deals) != 1 || list.Deals[0].Crop != "Wheat" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestResolverSkipsNonSyntheticNames(t *testing.T) {
	dealerUID := uuid.New()
	repo := &stubHistoryRepo{entries: []models.HistoryEntry{
		entryFor(dealerUID, nil, "Ramesh Kumar"),
	}}
	profiles := &stubProfileReader{
		byPhone: map[string]*models.FarmerProfile{
			"9876543210": {UserID: uuid.New(), Name: "Someone Else", Phone: "9876543210"},
		},
	}
	svc, _ := NewService(repo, &stubFarmerDealLister{list: &deals.DealList{}}, NewNameResolver(profiles))

	list, err := svc.DealerHistory(context.Background(), dealerUID, pagination.Params{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if list.Entries[0].FarmerName != "Ramesh Kumar" {
		t.Fatalf("expected stored literal, got %q", list.Entries[0].FarmerName)
	}
}
