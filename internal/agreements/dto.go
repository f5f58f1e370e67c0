package agreements

import (
	"time"

	"github.com/google/uuid"
)

// AgreementSnapshot is the frozen payload handed to the external PDF
// renderer. Optional fields that could not be resolved carry the "—"
// placeholder so the rendered document never shows blanks.
type AgreementSnapshot struct {
	DealID         uuid.UUID `json:"dealId"`
	FarmerName     string    `json:"farmerName"`
	FarmerPhone    string    `json:"farmerPhone"`
	FarmerAadhar   string    `json:"farmerAadhar"`
	FarmerState    string    `json:"farmerState"`
	DealerName     string    `json:"dealerName"`
	DealerBusiness string    `json:"dealerBusiness"`
	DealerPhone    string    `json:"dealerPhone"`
	DealerEmail    string    `json:"dealerEmail"`
	DealerState    string    `json:"dealerState"`
	Crop           string    `json:"crop"`
	Quantity       string    `json:"quantity"`
	Price          string    `json:"price"`
	Location       string    `json:"location"`
	HarvestDate    string    `json:"harvestDate"`
	TransportDate  string    `json:"transportDate"`
	ListedOn       string    `json:"listedOn"`
	AcceptedOn     string    `json:"acceptedOn"`
	EstimatedTotal string    `json:"estimatedTotal,omitempty"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// RenderReceipt reports the outcome of handing a snapshot to the renderer.
type RenderReceipt struct {
	DealID    uuid.UUID `json:"dealId"`
	MessageID string    `json:"messageId"`
}
