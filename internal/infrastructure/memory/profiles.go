package memory

import (
	"context"
	"errors"
	"sync"

	domain "ebridge-portal/internal/domain/entity/profiles"

	"github.com/google/uuid"
)

// ProfileRepository keeps profiles in process memory with the same username uniqueness
// as the Postgres index.
type ProfileRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: make(map[uuid.UUID]domain.Profile)}
}

func (r *ProfileRepository) Get(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, profile *domain.Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.Username != "" {
		for id, other := range r.items {
			if id != profile.UserID && other.Username == profile.Username {
				return domain.ErrUsernameTaken
			}
		}
	}
	r.items[profile.UserID] = *profile
	return nil
}

func (r *ProfileRepository) Close() {}
