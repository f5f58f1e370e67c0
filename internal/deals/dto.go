package deals

import (
	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
)

// ListOrder selects the created_at direction for open deal listings.
type ListOrder string

const (
	ListOrderAsc  ListOrder = "asc"
	ListOrderDesc ListOrder = "desc"
)

// OpenDealFilters describe the inputs supported by the open deals list.
type OpenDealFilters struct {
	Status *enums.DealStatus
	Order  ListOrder
}

// DealList wraps a page of deals plus the next page cursor.
type DealList struct {
	Deals      []models.Deal `json:"deals"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// CreateDealInput carries the farmer-submitted terms for a new deal. All
// term fields are free text with units baked in.
type CreateDealInput struct {
	FarmerID      uuid.UUID
	FarmerName    string
	Location      string
	Crop          string
	Quantity      string
	AskPrice      string
	HarvestDate   string
	TransportDate string
}

// DecisionInput captures the data required for a dealer to decide a deal.
type DecisionInput struct {
	DealID     uuid.UUID
	Decision   enums.DealDecision
	DealerID   uuid.UUID
	DealerName string
}

// DealCreatedEvent is emitted when a farmer posts a new deal.
type DealCreatedEvent struct {
	DealID   uuid.UUID        `json:"dealId"`
	FarmerID *uuid.UUID       `json:"farmerId,omitempty"`
	Crop     string           `json:"crop"`
	Status   enums.DealStatus `json:"status"`
}

// DealDecidedEvent is emitted when a dealer accepts or declines a deal.
type DealDecidedEvent struct {
	DealID         uuid.UUID          `json:"dealId"`
	FarmerID       *uuid.UUID         `json:"farmerId,omitempty"`
	DealerID       uuid.UUID          `json:"dealerId"`
	Decision       enums.DealDecision `json:"decision"`
	Status         enums.DealStatus   `json:"status"`
	HistoryEntryID uuid.UUID          `json:"historyEntryId"`
}
