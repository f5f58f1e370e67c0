package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/pkg/enums"
)

// User represents the canonical identity entity. Farmers sign up with a phone
// number, so their email is the synthetic "<phone>@krishimitra.com" address
// minted at registration.
type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	DisplayName  string          `gorm:"column:display_name;not null;default:''"`
	Role         enums.ActorRole `gorm:"column:role;type:text;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
