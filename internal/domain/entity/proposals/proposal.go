package proposals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a proposal. Pending is the only non-terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

func NewStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("invalid proposal status: %s", s)
	}
	return st, nil
}

// Action is the trade direction an advisor recommends.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

func (a Action) IsValid() bool {
	return a == ActionBuy || a == ActionSell
}

func NewAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("invalid proposal action: %s", s)
	}
	return a, nil
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

func NewRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return r, nil
}

var (
	ErrNotFound   = errors.New("proposal not found")
	ErrNotPending = errors.New("proposal is not pending")
)

var (
	ErrMissingClient     = errors.New("proposal client id is required")
	ErrMissingTitle      = errors.New("proposal title is required")
	ErrInvalidAmount     = errors.New("proposal amount must be positive")
	ErrInvalidUnitPrice  = errors.New("proposal unit price must be positive")
	ErrTotalMismatch     = errors.New("proposal total value does not match amount * unit price")
	ErrSignatureMismatch = errors.New("proposal signature must be present exactly when accepted")
	ErrDecisionMismatch  = errors.New("proposal decision date must be present exactly when decided")
)

// Proposal is an advisor-issued investment recommendation awaiting the client's decision.
// Once Status leaves pending the record is never changed again.
type Proposal struct {
	ID              uuid.UUID  `json:"id"`
	ClientID        uuid.UUID  `json:"client_id"`
	Title           string     `json:"title"`
	Action          Action     `json:"action"`
	Amount          float64    `json:"amount"`
	UnitPrice       float64    `json:"unit_price"`
	TotalValue      float64    `json:"total_value"`
	RiskLevel       RiskLevel  `json:"risk_level"`
	Rationale       string     `json:"rationale"`
	ExpectedReturn  string     `json:"expected_return,omitempty"`
	TimeHorizon     string     `json:"time_horizon,omitempty"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
	Status          Status     `json:"status"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DecisionAt      *time.Time `json:"decision_at,omitempty"`
	Signature       *string    `json:"signature,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DecidedBy       *uuid.UUID `json:"decided_by,omitempty"`
}

// NewParams is the advisor input for a new proposal.
type NewParams struct {
	ClientID        uuid.UUID
	Title           string
	Action          Action
	Amount          float64
	UnitPrice       float64
	RiskLevel       RiskLevel
	Rationale       string
	ExpectedReturn  string
	TimeHorizon     string
	AdditionalNotes string
	Deadline        *time.Time
}

// New validates params and returns a pending proposal with TotalValue computed.
func New(params NewParams, now time.Time) (*Proposal, error) {
	if params.ClientID == uuid.Nil {
		return nil, ErrMissingClient
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	if !params.Action.IsValid() {
		return nil, fmt.Errorf("invalid proposal action: %s", params.Action)
	}
	if !params.RiskLevel.IsValid() {
		return nil, fmt.Errorf("invalid risk level: %s", params.RiskLevel)
	}
	if params.Amount <= 0 || math.IsNaN(params.Amount) || math.IsInf(params.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	if params.UnitPrice <= 0 || math.IsNaN(params.UnitPrice) || math.IsInf(params.UnitPrice, 0) {
		return nil, ErrInvalidUnitPrice
	}
	now = now.UTC()
	var deadline *time.Time
	if params.Deadline != nil {
		d := params.Deadline.UTC()
		deadline = &d
	}
	return &Proposal{
		ID:              uuid.New(),
		ClientID:        params.ClientID,
		Title:           title,
		Action:          params.Action,
		Amount:          params.Amount,
		UnitPrice:       params.UnitPrice,
		TotalValue:      params.Amount * params.UnitPrice,
		RiskLevel:       params.RiskLevel,
		Rationale:       strings.TrimSpace(params.Rationale),
		ExpectedReturn:  strings.TrimSpace(params.ExpectedReturn),
		TimeHorizon:     strings.TrimSpace(params.TimeHorizon),
		AdditionalNotes: strings.TrimSpace(params.AdditionalNotes),
		Status:          StatusPending,
		Deadline:        deadline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (p *Proposal) IsPending() bool {
	return p.Status == StatusPending
}

// IsStale reports a pending proposal whose deadline has passed. Staleness is advisory,
// a stale proposal can still be decided.
func (p *Proposal) IsStale(now time.Time) bool {
	return p.IsPending() && p.Deadline != nil && now.After(*p.Deadline)
}

// Validate checks the record invariants. It runs on every row loaded from storage.
func (p *Proposal) Validate() error {
	if p.ClientID == uuid.Nil {
		return ErrMissingClient
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrMissingTitle
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid proposal status: %s", p.Status)
	}
	if !p.Action.IsValid() {
		return fmt.Errorf("invalid proposal action: %s", p.Action)
	}
	if !p.RiskLevel.IsValid() {
		return fmt.Errorf("invalid risk level: %s", p.RiskLevel)
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.UnitPrice <= 0 {
		return ErrInvalidUnitPrice
	}
	if !sameValue(p.TotalValue, p.Amount*p.UnitPrice) {
		return ErrTotalMismatch
	}
	hasSignature := p.Signature != nil && *p.Signature != ""
	if hasSignature != (p.Status == StatusAccepted) {
		return ErrSignatureMismatch
	}
	if (p.DecisionAt == nil) != (p.Status == StatusPending) {
		return ErrDecisionMismatch
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias pointer fields.
func (p Proposal) Clone() Proposal {
	out := p
	if p.Deadline != nil {
		d := *p.Deadline
		out.Deadline = &d
	}
	if p.DecisionAt != nil {
		d := *p.DecisionAt
		out.DecisionAt = &d
	}
	if p.Signature != nil {
		s := *p.Signature
		out.Signature = &s
	}
	if p.DecidedBy != nil {
		id := *p.DecidedBy
		out.DecidedBy = &id
	}
	return out
}

// numeric(20,8) storage rounds the product, so loaded rows are compared with a tolerance.
func sameValue(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= 1e-6 {
		return true
	}
	return diff <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
