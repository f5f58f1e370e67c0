package models

import (
	"time"

	"github.com/google/uuid"
)

// FarmerProfile holds the reference data captured at farmer signup. The deal
// core only reads it to resolve display names and agreement contact details.
type FarmerProfile struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex"`
	Aadhar    string    `gorm:"column:aadhar;not null;default:''"`
	State     string    `gorm:"column:state;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
