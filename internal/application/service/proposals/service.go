package proposals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ebridge-portal/internal/domain/entity/activity"
	domain "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/google/uuid"
)

// IssueRequest is the advisor input for a new proposal. When UnitPrice is zero and
// InstrumentUID is set, the price is taken from the quote provider.
type IssueRequest struct {
	domain.NewParams
	InstrumentUID string
}

// Service wires the store and engine for each request session and carries the staff
// operations around them.
type Service struct {
	repo     interfaces.ProposalRepository
	signer   interfaces.Signer
	quotes   interfaces.QuoteProvider
	opts     []EngineOption
	template *Engine
}

func NewService(repo interfaces.ProposalRepository, signer interfaces.Signer, quotes interfaces.QuoteProvider, opts ...EngineOption) *Service {
	return &Service{
		repo:     repo,
		signer:   signer,
		quotes:   quotes,
		opts:     opts,
		template: NewEngine(repo, session.Session{}, signer, opts...),
	}
}

func (s *Service) Store(sess session.Session) *Store {
	return NewStore(s.repo, sess)
}

func (s *Service) Engine(sess session.Session) *Engine {
	return NewEngine(s.repo, sess, s.signer, s.opts...)
}

// LoadOwn loads the proposals of the session user.
func (s *Service) LoadOwn(ctx context.Context, sess session.Session) (*Store, error) {
	store := s.Store(sess)
	if _, err := store.LoadForClient(ctx, sess.UserID); err != nil {
		return store, err
	}
	return store, nil
}

// Accept loads the session user's proposal, accepts it and reloads the store.
func (s *Service) Accept(ctx context.Context, sess session.Session, id uuid.UUID, confirmed bool) (*domain.Proposal, error) {
	return s.decideByID(ctx, sess, id, func(e *Engine, p *domain.Proposal) error {
		return e.Accept(ctx, p, confirmed)
	})
}

// Reject loads the session user's proposal, rejects it and reloads the store.
func (s *Service) Reject(ctx context.Context, sess session.Session, id uuid.UUID, reason string) (*domain.Proposal, error) {
	return s.decideByID(ctx, sess, id, func(e *Engine, p *domain.Proposal) error {
		return e.RejectWithReason(ctx, p, strings.TrimSpace(reason))
	})
}

func (s *Service) decideByID(ctx context.Context, sess session.Session, id uuid.UUID, apply func(*Engine, *domain.Proposal) error) (*domain.Proposal, error) {
	store, err := s.LoadOwn(ctx, sess)
	if err != nil {
		return nil, err
	}
	p, ok := store.Find(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := apply(s.Engine(sess), &p); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			if _, refreshErr := store.Refresh(ctx); refreshErr == nil {
				if current, found := store.Find(id); found {
					return &current, err
				}
			}
		}
		return nil, err
	}
	if _, err := store.Refresh(ctx); err != nil {
		s.template.logger.WithError(err).Warn("refresh after decision failed")
		return &p, nil
	}
	if current, found := store.Find(id); found {
		return &current, nil
	}
	return &p, nil
}

// Issue creates a pending proposal for a client. Staff only.
func (s *Service) Issue(ctx context.Context, sess session.Session, req IssueRequest) (*domain.Proposal, error) {
	if !sess.IsStaff() {
		return nil, ErrForbidden
	}
	params := req.NewParams
	if params.UnitPrice == 0 && req.InstrumentUID != "" && s.quotes != nil {
		price, err := s.quotes.LastPrice(ctx, req.InstrumentUID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuote, err)
		}
		params.UnitPrice = price
	}
	p, err := domain.New(params, s.template.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	if s.template.publisher != nil {
		event := activity.NewEvent(p.ClientID, activity.KindProposalIssued, map[string]any{
			"proposal_id": p.ID.String(),
			"issued_by":   sess.UserID.String(),
			"action":      string(p.Action),
			"total_value": p.TotalValue,
		}, s.template.now())
		if err := s.template.publisher.Publish(ctx, event); err != nil {
			s.template.logger.WithError(err).Warn("publish issue event failed")
		}
	}
	return p, nil
}

// List returns proposals across clients. Staff only.
func (s *Service) List(ctx context.Context, sess session.Session, filter domain.Filter) ([]domain.Proposal, error) {
	if !sess.IsStaff() {
		return nil, ErrForbidden
	}
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return list, nil
}

func (s *Service) Summary(ctx context.Context, sess session.Session) (domain.Summary, error) {
	list, err := s.List(ctx, sess, domain.Filter{})
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(list, s.template.now()), nil
}

func (s *Service) Close() {
	s.repo.Close()
}
