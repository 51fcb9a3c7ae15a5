package proposals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ebridge-portal/internal/domain/entity/activity"
	domain "ebridge-portal/internal/domain/entity/proposals"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Decision outcomes reported to a DecisionRecorder.
const (
	OutcomeRecorded             = "recorded"
	OutcomeAlreadyDecided       = "already_decided"
	OutcomeConfirmationRequired = "confirmation_required"
	OutcomeInFlight             = "in_flight"
	OutcomeFailed               = "failed"
)

// DecisionRecorder observes decision attempts, e.g. for metrics.
type DecisionRecorder interface {
	ObserveDecision(status domain.Status, outcome string)
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithGuard(guard interfaces.DecisionGuard) EngineOption {
	return func(e *Engine) { e.guard = guard }
}

func WithPublisher(pub interfaces.EventPublisher) EngineOption {
	return func(e *Engine) { e.publisher = pub }
}

func WithRecorder(rec DecisionRecorder) EngineOption {
	return func(e *Engine) { e.recorder = rec }
}

func WithLogger(logger *logrus.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.WithField("component", "proposal_engine")
		}
	}
}

// Engine is the only component that transitions a proposal out of pending. The caller's
// proposal is replaced with the stored row only after the write is confirmed.
type Engine struct {
	repo      interfaces.ProposalRepository
	session   session.Session
	signer    interfaces.Signer
	guard     interfaces.DecisionGuard
	publisher interfaces.EventPublisher
	recorder  DecisionRecorder
	logger    *logrus.Entry
	now       func() time.Time
}

func NewEngine(repo interfaces.ProposalRepository, sess session.Session, signer interfaces.Signer, opts ...EngineOption) *Engine {
	e := &Engine{
		repo:    repo,
		session: sess,
		signer:  signer,
		logger:  logrus.StandardLogger().WithField("component", "proposal_engine"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Accept records the client's acceptance. confirmation is the client's acknowledgement of
// the legal risk disclosure; without it nothing changes.
func (e *Engine) Accept(ctx context.Context, p *domain.Proposal, confirmation bool) error {
	if err := e.precheck(p, domain.StatusAccepted); err != nil {
		return err
	}
	if !confirmation {
		e.observe(domain.StatusAccepted, OutcomeConfirmationRequired)
		return ErrConfirmationRequired
	}
	return e.decide(ctx, p, domain.StatusAccepted, "")
}

func (e *Engine) Reject(ctx context.Context, p *domain.Proposal) error {
	return e.RejectWithReason(ctx, p, "")
}

// RejectWithReason records a rejection together with the client's optional reason.
func (e *Engine) RejectWithReason(ctx context.Context, p *domain.Proposal, reason string) error {
	if err := e.precheck(p, domain.StatusRejected); err != nil {
		return err
	}
	return e.decide(ctx, p, domain.StatusRejected, reason)
}

func (e *Engine) precheck(p *domain.Proposal, target domain.Status) error {
	if p == nil {
		return ErrNilProposal
	}
	if e.session.UserID != p.ClientID {
		return ErrForbidden
	}
	if !p.IsPending() {
		e.observe(target, OutcomeAlreadyDecided)
		return ErrAlreadyDecided
	}
	return nil
}

func (e *Engine) decide(ctx context.Context, p *domain.Proposal, status domain.Status, reason string) error {
	log := e.logger.WithFields(logrus.Fields{
		"proposal_id": p.ID.String(),
		"status":      status.String(),
	})

	if e.guard != nil {
		release, ok, err := e.guard.Acquire(ctx, p.ID)
		switch {
		case err != nil:
			log.WithError(err).Warn("decision guard unavailable, relying on storage check")
		case !ok:
			e.observe(status, OutcomeInFlight)
			return ErrDecisionInFlight
		default:
			defer release()
		}
	}

	decision := domain.Decision{
		ProposalID:      p.ID,
		Status:          status,
		DecidedAt:       e.now().UTC(),
		RejectionReason: reason,
		DecidedBy:       e.session.UserID,
	}
	if status == domain.StatusAccepted {
		sig, err := e.signer.Sign(ctx, p.Clone(), decision)
		if err != nil {
			e.observe(status, OutcomeFailed)
			return fmt.Errorf("sign proposal: %w", err)
		}
		decision.Signature = &sig
	}

	stored, err := e.repo.RecordDecision(ctx, decision)
	switch {
	case errors.Is(err, domain.ErrNotPending):
		e.observe(status, OutcomeAlreadyDecided)
		return ErrAlreadyDecided
	case errors.Is(err, domain.ErrNotFound):
		e.observe(status, OutcomeFailed)
		return err
	case err != nil:
		e.observe(status, OutcomeFailed)
		log.WithError(err).Warn("decision write failed")
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if stored == nil || stored.Status != status {
		e.observe(status, OutcomeFailed)
		return fmt.Errorf("%w: stored row does not reflect the decision", ErrPersistence)
	}

	*p = stored.Clone()
	e.observe(status, OutcomeRecorded)
	log.Info("proposal decision recorded")
	e.publish(ctx, *p)
	return nil
}

func (e *Engine) publish(ctx context.Context, p domain.Proposal) {
	if e.publisher == nil {
		return
	}
	props := map[string]any{
		"proposal_id": p.ID.String(),
		"status":      p.Status.String(),
		"action":      string(p.Action),
		"total_value": p.TotalValue,
	}
	if p.Signature != nil {
		props["signature"] = *p.Signature
	}
	if p.RejectionReason != "" {
		props["reason"] = p.RejectionReason
	}
	event := activity.NewEvent(p.ClientID, activity.KindProposalDecided, props, e.now())
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WithError(err).WithField("proposal_id", p.ID.String()).Warn("publish decision event failed")
	}
}

func (e *Engine) observe(status domain.Status, outcome string) {
	if e.recorder != nil {
		e.recorder.ObserveDecision(status, outcome)
	}
}
