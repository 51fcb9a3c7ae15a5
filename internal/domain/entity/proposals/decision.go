package proposals

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the patch the lifecycle engine asks storage to apply. Storage applies it only
// while the stored status is still pending.
type Decision struct {
	ProposalID      uuid.UUID
	Status          Status
	DecidedAt       time.Time
	Signature       *string
	RejectionReason string
	DecidedBy       uuid.UUID
}

// Apply returns a copy of p with the decision applied.
func (d Decision) Apply(p Proposal) Proposal {
	out := p.Clone()
	decidedAt := d.DecidedAt.UTC()
	out.Status = d.Status
	out.DecisionAt = &decidedAt
	out.UpdatedAt = decidedAt
	out.Signature = nil
	if d.Signature != nil {
		sig := *d.Signature
		out.Signature = &sig
	}
	out.RejectionReason = d.RejectionReason
	decidedBy := d.DecidedBy
	out.DecidedBy = &decidedBy
	return out
}

// Filter narrows staff listings. Zero values match everything.
type Filter struct {
	Status   Status
	ClientID uuid.UUID
}

// Summary aggregates proposal counts for the admin dashboard.
type Summary struct {
	Total              int     `json:"total"`
	Pending            int     `json:"pending"`
	Accepted           int     `json:"accepted"`
	Rejected           int     `json:"rejected"`
	StalePending       int     `json:"stale_pending"`
	AcceptedTotalValue float64 `json:"accepted_total_value"`
	PendingTotalValue  float64 `json:"pending_total_value"`
	AcceptanceRatePct  float64 `json:"acceptance_rate_pct"`
}

// Summarize folds a proposal list into a Summary.
func Summarize(list []Proposal, now time.Time) Summary {
	var s Summary
	for i := range list {
		p := &list[i]
		s.Total++
		switch p.Status {
		case StatusPending:
			s.Pending++
			s.PendingTotalValue += p.TotalValue
			if p.IsStale(now) {
				s.StalePending++
			}
		case StatusAccepted:
			s.Accepted++
			s.AcceptedTotalValue += p.TotalValue
		case StatusRejected:
			s.Rejected++
		}
	}
	if decided := s.Accepted + s.Rejected; decided > 0 {
		s.AcceptanceRatePct = float64(s.Accepted) * 100 / float64(decided)
	}
	return s
}
