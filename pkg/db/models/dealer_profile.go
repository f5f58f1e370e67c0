package models

import (
	"time"

	"github.com/google/uuid"
)

// DealerProfile holds the business reference data captured at dealer signup.
type DealerProfile struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	BusinessName string    `gorm:"column:business_name;not null"`
	ContactName  string    `gorm:"column:contact_name;not null;default:''"`
	BusinessType string    `gorm:"column:business_type;not null;default:''"`
	Email        string    `gorm:"column:email;not null;default:''"`
	Phone        string    `gorm:"column:phone;not null;default:''"`
	State        string    `gorm:"column:state;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
