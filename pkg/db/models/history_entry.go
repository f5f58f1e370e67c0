package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/enums"
)

// HistoryEntry is the immutable record of a dealer's terminal action on a
// deal. Fields are denormalized snapshots taken at decision time; the farmer
// name in particular may be a synthetic placeholder and is re-resolved at read
// time by the history projector.
type HistoryEntry struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DealerUID     uuid.UUID           `gorm:"column:dealer_uid;type:uuid;not null;index" json:"dealerUid"`
	DealID        uuid.UUID           `gorm:"column:deal_id;type:uuid;not null" json:"dealId"`
	FarmerID      *uuid.UUID          `gorm:"column:farmer_id;type:uuid" json:"farmerId,omitempty"`
	FarmerName    string              `gorm:"column:farmer_name;not null" json:"farmerName"`
	Location      string              `gorm:"column:location;not null;default:''" json:"location"`
	Crop          string              `gorm:"column:crop;not null" json:"crop"`
	Quantity      string              `gorm:"column:quantity;not null" json:"quantity"`
	FinalPrice    string              `gorm:"column:final_price;not null" json:"finalPrice"`
	HarvestDate   string              `gorm:"column:harvest_date;not null;default:''" json:"harvestDate"`
	TransportDate string              `gorm:"column:transport_date;not null;default:''" json:"transportDate"`
	DealerName    string              `gorm:"column:dealer_name;not null" json:"dealerName"`
	AcceptedAtStr *string             `gorm:"column:accepted_at_str" json:"acceptedAtStr,omitempty"`
	Status        enums.HistoryStatus `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"date"`
}
