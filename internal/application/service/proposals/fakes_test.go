package proposals

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	"ebridge-portal/internal/infrastructure/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errGatewayDown = errors.New("gateway unreachable")

// flakyRepo wraps the in-memory repository with switchable failures.
type flakyRepo struct {
	*memory.ProposalRepository

	mu          sync.Mutex
	listErr     error
	decisionErr error
	decisions   int
}

func newFlakyRepo() *flakyRepo {
	return &flakyRepo{ProposalRepository: memory.NewProposalRepository()}
}

func (r *flakyRepo) failList(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

func (r *flakyRepo) failDecision(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisionErr = err
}

func (r *flakyRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Proposal, error) {
	r.mu.Lock()
	err := r.listErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.ProposalRepository.ListByClient(ctx, clientID)
}

func (r *flakyRepo) RecordDecision(ctx context.Context, decision domain.Decision) (*domain.Proposal, error) {
	r.mu.Lock()
	err := r.decisionErr
	r.decisions++
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.ProposalRepository.RecordDecision(ctx, decision)
}

type staticSigner struct {
	token string
	err   error
}

func (s staticSigner) Sign(context.Context, domain.Proposal, domain.Decision) (string, error) {
	return s.token, s.err
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) ObserveDecision(_ domain.Status, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func (c *countingRecorder) count(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

type stubGuard struct {
	ok       bool
	err      error
	released int
}

func (g *stubGuard) Acquire(context.Context, uuid.UUID) (func(), bool, error) {
	if g.err != nil || !g.ok {
		return nil, g.ok, g.err
	}
	return func() { g.released++ }, true, nil
}

var fixedNow = time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

func clientSession(t *testing.T) session.Session {
	t.Helper()
	sess, err := session.New(uuid.New(), "marco.rossi@example.com", session.RoleClient)
	require.NoError(t, err)
	return sess
}

func staffSession(t *testing.T) session.Session {
	t.Helper()
	sess, err := session.New(uuid.New(), "advisor@example.com", session.RoleStaff)
	require.NoError(t, err)
	return sess
}

// seedBitcoin stores the 0.5 BTC @ 65400 proposal for clientID.
func seedBitcoin(t *testing.T, repo *flakyRepo, clientID uuid.UUID, createdAt time.Time) domain.Proposal {
	t.Helper()
	deadline := createdAt.Add(5 * 24 * time.Hour)
	p, err := domain.New(domain.NewParams{
		ClientID:  clientID,
		Title:     "Bitcoin (BTC)",
		Action:    domain.ActionBuy,
		Amount:    0.5,
		UnitPrice: 65400,
		RiskLevel: domain.RiskMedium,
		Rationale: "Strong support levels after the recent correction.",
		Deadline:  &deadline,
	}, createdAt)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return *p
}
