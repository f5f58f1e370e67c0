package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/krishimitra/marketplace-backend/internal/profiles"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
)

type farmerProfileReader interface {
	FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error)
	FindFarmerProfileByPhone(ctx context.Context, phone string) (*models.FarmerProfile, error)
}

// NameResolver maps the farmer identity snapshotted on a history entry back
// to the current display name. Every link is best-effort; a lookup miss or
// store error falls through to the next link, and the stored literal is the
// final fallback so the resolved name is never empty.
type NameResolver struct {
	profiles farmerProfileReader
}

// NewNameResolver builds a resolver over the farmer profile store.
func NewNameResolver(profiles farmerProfileReader) *NameResolver {
	return &NameResolver{profiles: profiles}
}

// ResolveFarmerName runs the resolver chain for a single history entry:
// profile by farmer id, then profile by the phone embedded in a synthetic
// "<phone>@krishimitra.com" name, then the stored literal.
func (r *NameResolver) ResolveFarmerName(ctx context.Context, entry models.HistoryEntry) string {
	if r == nil || r.profiles == nil {
		return entry.FarmerName
	}

	if entry.FarmerID != nil && *entry.FarmerID != uuid.Nil {
		if profile, err := r.profiles.FindFarmerProfile(ctx, *entry.FarmerID); err == nil && profile.Name != "" {
			return profile.Name
		}
	}

	if phone := profiles.PhoneFromSyntheticEmail(entry.FarmerName); phone != "" {
		if profile, err := r.profiles.FindFarmerProfileByPhone(ctx, phone); err == nil && profile.Name != "" {
			return profile.Name
		}
	}

	return entry.FarmerName
}
