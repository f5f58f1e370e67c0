package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/pkg/db/models"
)

// Repository exposes persistence for users and the farmer/dealer profile
// reference data attached to them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	CreateFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error
	CreateDealerProfile(ctx context.Context, profile *models.DealerProfile) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error)
	FindFarmerProfileByPhone(ctx context.Context, phone string) (*models.FarmerProfile, error)
	FindDealerProfile(ctx context.Context, userID uuid.UUID) (*models.DealerProfile, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a profiles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) CreateFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) CreateDealerProfile(ctx context.Context, profile *models.DealerProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindFarmerProfileByPhone(ctx context.Context, phone string) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindDealerProfile(ctx context.Context, userID uuid.UUID) (*models.DealerProfile, error) {
	var profile models.DealerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login_at", at).Error
}
