package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind classifies activity events. Client kinds come from the browser, the rest are
// emitted by services.
type Kind string

const (
	KindPageView         Kind = "page_view"
	KindLogin            Kind = "login"
	KindSignup           Kind = "signup"
	KindPortfolioAction  Kind = "portfolio_action"
	KindProposalAction   Kind = "proposal_action"
	KindProposalIssued   Kind = "proposal.issued"
	KindProposalDecided  Kind = "proposal.decided"
	KindDocumentUploaded Kind = "document.uploaded"
	KindDocumentReviewed Kind = "document.reviewed"
	KindProfileUpdated   Kind = "profile.updated"
)

func (k Kind) IsClient() bool {
	switch k {
	case KindPageView, KindLogin, KindSignup, KindPortfolioAction, KindProposalAction:
		return true
	default:
		return false
	}
}

func NewClientKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsClient() {
		return "", fmt.Errorf("unsupported event kind: %s", s)
	}
	return k, nil
}

// Event is one entry of the activity log.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Kind       Kind           `json:"kind"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEvent(userID uuid.UUID, kind Kind, props map[string]any, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Properties: props,
		OccurredAt: at.UTC(),
	}
}
