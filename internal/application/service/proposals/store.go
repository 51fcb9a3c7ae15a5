package proposals

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/google/uuid"
)

// Store holds the proposals of one client for the lifetime of a load cycle. It is reloaded
// after every mutation instead of being patched in place.
type Store struct {
	repo    interfaces.ProposalRepository
	session session.Session

	mu       sync.RWMutex
	clientID uuid.UUID
	items    []domain.Proposal
	loaded   bool
}

func NewStore(repo interfaces.ProposalRepository, sess session.Session) *Store {
	return &Store{repo: repo, session: sess}
}

// LoadForClient fetches every proposal of clientID, newest first. On a gateway failure the
// previously loaded list stays in place and the error wraps ErrFetch; it is returned only
// when it belongs to the same client.
func (s *Store) LoadForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Proposal, error) {
	if !s.session.CanAccess(clientID) {
		return nil, ErrForbidden
	}
	list, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return s.lastFor(clientID), fmt.Errorf("%w: %w", ErrFetch, err)
	}

	items := make([]domain.Proposal, 0, len(list))
	for i := range list {
		if list[i].ClientID != clientID {
			continue
		}
		items = append(items, list[i].Clone())
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	s.mu.Lock()
	s.clientID = clientID
	s.items = items
	s.loaded = true
	s.mu.Unlock()

	return s.snapshot(), nil
}

// Refresh reloads the client of the last successful load.
func (s *Store) Refresh(ctx context.Context) ([]domain.Proposal, error) {
	s.mu.RLock()
	clientID, loaded := s.clientID, s.loaded
	s.mu.RUnlock()
	if !loaded {
		return nil, ErrNotLoaded
	}
	return s.LoadForClient(ctx, clientID)
}

// All returns the loaded proposals ordered by creation time, newest first.
func (s *Store) All() []domain.Proposal {
	return s.snapshot()
}

func (s *Store) Pending() []domain.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Proposal, 0, len(s.items))
	for i := range s.items {
		if s.items[i].IsPending() {
			out = append(out, s.items[i].Clone())
		}
	}
	return out
}

// History returns decided proposals, most recent decision first.
func (s *Store) History() []domain.Proposal {
	s.mu.RLock()
	out := make([]domain.Proposal, 0, len(s.items))
	for i := range s.items {
		if !s.items[i].IsPending() {
			out = append(out, s.items[i].Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DecisionAt, out[j].DecisionAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

// Find returns a copy of the loaded proposal with the given id.
func (s *Store) Find(id uuid.UUID) (domain.Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i].Clone(), true
		}
	}
	return domain.Proposal{}, false
}

func (s *Store) lastFor(clientID uuid.UUID) []domain.Proposal {
	s.mu.RLock()
	same := s.loaded && s.clientID == clientID
	s.mu.RUnlock()
	if !same {
		return []domain.Proposal{}
	}
	return s.snapshot()
}

func (s *Store) snapshot() []domain.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Proposal, len(s.items))
	for i := range s.items {
		out[i] = s.items[i].Clone()
	}
	return out
}
