package proposals

import (
	"fmt"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
)

// proposalRow mirrors investment_proposals as stored. Nullable text columns stay pointers
// until toDomain decides what they mean.
type proposalRow struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Title              string
	Action             string
	Units              float64
	UnitPrice          float64
	InvestmentAmount   float64
	RiskLevel          string
	Description        *string
	ExpectedReturn     *string
	TimeHorizon        *string
	AdditionalNotes    *string
	Status             string
	Deadline           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ClientDecisionDate *time.Time
	DigitalSignature   *string
	RejectionReason    *string
	DecidedBy          *uuid.UUID
}

// toDomain converts a raw row into a validated proposal. Rows that break the record
// invariants are reported instead of being handed to callers.
func (r proposalRow) toDomain() (domain.Proposal, error) {
	status, err := domain.NewStatus(r.Status)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %s: %w", r.ID, err)
	}
	action, err := domain.NewAction(r.Action)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %s: %w", r.ID, err)
	}
	risk, err := domain.NewRiskLevel(r.RiskLevel)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %s: %w", r.ID, err)
	}

	p := domain.Proposal{
		ID:              r.ID,
		ClientID:        r.UserID,
		Title:           r.Title,
		Action:          action,
		Amount:          r.Units,
		UnitPrice:       r.UnitPrice,
		TotalValue:      r.InvestmentAmount,
		RiskLevel:       risk,
		Rationale:       deref(r.Description),
		ExpectedReturn:  deref(r.ExpectedReturn),
		TimeHorizon:     deref(r.TimeHorizon),
		AdditionalNotes: deref(r.AdditionalNotes),
		Status:          status,
		Deadline:        utcPtr(r.Deadline),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		DecisionAt:      utcPtr(r.ClientDecisionDate),
		RejectionReason: deref(r.RejectionReason),
		DecidedBy:       r.DecidedBy,
	}
	if r.DigitalSignature != nil && *r.DigitalSignature != "" {
		sig := *r.DigitalSignature
		p.Signature = &sig
	}
	if err := p.Validate(); err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %s: %w", r.ID, err)
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
