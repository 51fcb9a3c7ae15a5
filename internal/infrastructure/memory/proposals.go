package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
)

// ProposalRepository keeps proposals in process memory. It honours the same pending-only
// decision rule as the Postgres repository.
type ProposalRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Proposal
}

func NewProposalRepository() *ProposalRepository {
	return &ProposalRepository{items: make(map[uuid.UUID]domain.Proposal)}
}

func (r *ProposalRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Proposal, error) {
	return r.List(ctx, domain.Filter{ClientID: clientID})
}

func (r *ProposalRepository) List(_ context.Context, filter domain.Filter) ([]domain.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Proposal, 0, len(r.items))
	for _, p := range r.items {
		if filter.ClientID != uuid.Nil && p.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ProposalRepository) Get(_ context.Context, id uuid.UUID) (*domain.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (r *ProposalRepository) Create(_ context.Context, p *domain.Proposal) error {
	if p == nil {
		return errors.New("proposal is nil")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[p.ID]; exists {
		return errors.New("proposal already exists")
	}
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *ProposalRepository) RecordDecision(_ context.Context, decision domain.Decision) (*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[decision.ProposalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !p.IsPending() {
		return nil, domain.ErrNotPending
	}
	updated := decision.Apply(p)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	r.items[updated.ID] = updated
	out := updated.Clone()
	return &out, nil
}

func (r *ProposalRepository) Close() {}
