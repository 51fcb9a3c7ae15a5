package interfaces

//go:generate mockgen -source=profiles.go -destination=mocks/mock_profiles.go -package=mocks

import (
	"context"

	"ebridge-portal/internal/domain/entity/profiles"

	"github.com/google/uuid"
)

// ProfileRepository stores one profile per user.
type ProfileRepository interface {
	// Get returns profiles.ErrNotFound when the user never saved a profile.
	Get(ctx context.Context, userID uuid.UUID) (*profiles.Profile, error)
	// Upsert inserts or replaces the profile and returns profiles.ErrUsernameTaken when
	// another user holds the username.
	Upsert(ctx context.Context, profile *profiles.Profile) error
	Close()
}
