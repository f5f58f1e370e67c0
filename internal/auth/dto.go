package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/enums"
)

// RegisterFarmerRequest contains the payload for farmer signup. Farmers
// authenticate with their phone number, so no email is collected.
type RegisterFarmerRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Aadhar   string `json:"aadhar" validate:"required"`
	State    string `json:"state" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterDealerRequest contains the payload for dealer signup.
type RegisterDealerRequest struct {
	BusinessName string `json:"businessName" validate:"required"`
	ContactName  string `json:"contactName" validate:"required"`
	BusinessType string `json:"businessType"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	State        string `json:"state"`
	Password     string `json:"password" validate:"required,min=6"`
}

// LoginRequest carries the credentials for either role. Farmers may submit
// their phone number; it is expanded to the synthetic email before lookup.
type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required"`
}

// SessionUser is the identity block returned after login or registration.
type SessionUser struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Role        enums.ActorRole `json:"role"`
}

// AuthResponse bundles the access token with the authenticated identity.
type AuthResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	User        SessionUser `json:"user"`
}
