package interfaces

//go:generate mockgen -source=proposals.go -destination=mocks/mock_proposals.go -package=mocks

import (
	"context"

	"ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
)

// ProposalRepository is the persistence gateway for proposals. Implementations convert raw
// rows into validated entities before returning them.
type ProposalRepository interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]proposals.Proposal, error)
	List(ctx context.Context, filter proposals.Filter) ([]proposals.Proposal, error)
	Get(ctx context.Context, id uuid.UUID) (*proposals.Proposal, error)
	Create(ctx context.Context, proposal *proposals.Proposal) error
	// RecordDecision applies the decision only while the stored status is pending and
	// returns the stored row. A lost race yields proposals.ErrNotPending.
	RecordDecision(ctx context.Context, decision proposals.Decision) (*proposals.Proposal, error)
	Close()
}

// Signer produces the consent token stored on an accepted proposal.
type Signer interface {
	Sign(ctx context.Context, proposal proposals.Proposal, decision proposals.Decision) (string, error)
}

// DecisionGuard serialises decisions on a single proposal across server instances.
// ok is false when another decision currently holds the proposal.
type DecisionGuard interface {
	Acquire(ctx context.Context, proposalID uuid.UUID) (release func(), ok bool, err error)
}

// QuoteProvider resolves the latest unit price of an instrument.
type QuoteProvider interface {
	LastPrice(ctx context.Context, instrumentUID string) (float64, error)
}
