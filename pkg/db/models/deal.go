package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/enums"
)

// Deal is a farmer's crop-price commitment offer, the central record of the
// marketplace. Term fields are free text with units baked in ("80 qtl",
// "₹2,600/qtl") exactly as the clients submit them; the backend never parses
// them except best-effort in agreement assembly.
type Deal struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FarmerID      *uuid.UUID       `gorm:"column:farmer_id;type:uuid" json:"farmerId,omitempty"`
	FarmerName    string           `gorm:"column:farmer_name;not null" json:"farmerName"`
	Location      string           `gorm:"column:location;not null" json:"location"`
	Crop          string           `gorm:"column:crop;not null" json:"crop"`
	Quantity      string           `gorm:"column:quantity;not null" json:"quantity"`
	AskPrice      string           `gorm:"column:ask_price;not null" json:"askPrice"`
	HarvestDate   string           `gorm:"column:harvest_date;not null;default:''" json:"harvestDate"`
	TransportDate string           `gorm:"column:transport_date;not null;default:''" json:"transportDate"`
	ListedOn      string           `gorm:"column:listed_on;not null;default:''" json:"listedOn"`
	Status        enums.DealStatus `gorm:"column:status;type:text;not null;default:'New'" json:"status"`
	AcceptedBy    *uuid.UUID       `gorm:"column:accepted_by;type:uuid" json:"acceptedBy,omitempty"`
	DealerName    *string          `gorm:"column:dealer_name" json:"dealerName,omitempty"`
	AcceptedAt    *time.Time       `gorm:"column:accepted_at" json:"acceptedAt,omitempty"`
	AcceptedAtStr *string          `gorm:"column:accepted_at_str" json:"acceptedAtStr,omitempty"`
	DeclinedBy    *uuid.UUID       `gorm:"column:declined_by;type:uuid" json:"declinedBy,omitempty"`
	DeclinedAt    *time.Time       `gorm:"column:declined_at" json:"declinedAt,omitempty"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
