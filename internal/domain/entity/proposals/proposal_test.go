package proposals

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)

func validParams() NewParams {
	return NewParams{
		ClientID:  uuid.New(),
		Title:     "  Bitcoin (BTC) ",
		Action:    ActionBuy,
		Amount:    0.5,
		UnitPrice: 65400,
		RiskLevel: RiskMedium,
	}
}

func TestNew(t *testing.T) {
	p, err := New(validParams(), now)
	require.NoError(t, err)

	assert.Equal(t, "Bitcoin (BTC)", p.Title)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, 32700.0, p.TotalValue)
	assert.Nil(t, p.Signature)
	assert.Nil(t, p.DecisionAt)
	assert.NoError(t, p.Validate())
}

func TestNewRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewParams)
		want   error
	}{
		{"missing client", func(p *NewParams) { p.ClientID = uuid.Nil }, ErrMissingClient},
		{"blank title", func(p *NewParams) { p.Title = "   " }, ErrMissingTitle},
		{"zero amount", func(p *NewParams) { p.Amount = 0 }, ErrInvalidAmount},
		{"negative price", func(p *NewParams) { p.UnitPrice = -1 }, ErrInvalidUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := New(params, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	params := validParams()
	params.Action = "HOLD"
	_, err := New(params, now)
	assert.Error(t, err)
}

func TestValidateInvariants(t *testing.T) {
	base, err := New(validParams(), now)
	require.NoError(t, err)
	sig := "0xabc"
	at := now.Add(time.Hour)

	tests := []struct {
		name   string
		mutate func(*Proposal)
		want   error
	}{
		{"pending with signature", func(p *Proposal) { p.Signature = &sig }, ErrSignatureMismatch},
		{"accepted without signature", func(p *Proposal) { p.Status = StatusAccepted; p.DecisionAt = &at }, ErrSignatureMismatch},
		{"rejected with signature", func(p *Proposal) { p.Status = StatusRejected; p.DecisionAt = &at; p.Signature = &sig }, ErrSignatureMismatch},
		{"pending with decision date", func(p *Proposal) { p.DecisionAt = &at }, ErrDecisionMismatch},
		{"rejected without decision date", func(p *Proposal) { p.Status = StatusRejected }, ErrDecisionMismatch},
		{"total mismatch", func(p *Proposal) { p.TotalValue = 1 }, ErrTotalMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base.Clone()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tt.want)
		})
	}
}

func TestValidateToleratesRoundedTotal(t *testing.T) {
	p, err := New(NewParams{
		ClientID:  uuid.New(),
		Title:     "Ethereum (ETH)",
		Action:    ActionSell,
		Amount:    0.3,
		UnitPrice: 3300.1,
		RiskLevel: RiskHigh,
	}, now)
	require.NoError(t, err)

	p.TotalValue = 990.03
	assert.NoError(t, p.Validate())
}

func TestDecisionApply(t *testing.T) {
	p, err := New(validParams(), now)
	require.NoError(t, err)
	sig := "0xfeed"
	decidedBy := p.ClientID

	accepted := Decision{ProposalID: p.ID, Status: StatusAccepted, DecidedAt: now, Signature: &sig, DecidedBy: decidedBy}.Apply(*p)
	assert.NoError(t, accepted.Validate())
	assert.Equal(t, StatusPending, p.Status, "input is not mutated")
	sig = "changed"
	assert.Equal(t, "0xfeed", *accepted.Signature)

	rejected := Decision{ProposalID: p.ID, Status: StatusRejected, DecidedAt: now, RejectionReason: "volatility"}.Apply(*p)
	assert.NoError(t, rejected.Validate())
	assert.Equal(t, "volatility", rejected.RejectionReason)
	assert.Nil(t, rejected.Signature)
}

func TestIsStale(t *testing.T) {
	p, err := New(validParams(), now)
	require.NoError(t, err)
	assert.False(t, p.IsStale(now), "no deadline")

	deadline := now.Add(24 * time.Hour)
	p.Deadline = &deadline
	assert.False(t, p.IsStale(now))
	assert.True(t, p.IsStale(now.Add(48*time.Hour)))

	p.Status = StatusRejected
	assert.False(t, p.IsStale(now.Add(48*time.Hour)))
}

func TestSummarize(t *testing.T) {
	mk := func(status Status) Proposal {
		p, err := New(validParams(), now)
		require.NoError(t, err)
		at := now
		sig := "0x1"
		switch status {
		case StatusAccepted:
			return Decision{Status: status, DecidedAt: at, Signature: &sig}.Apply(*p)
		case StatusRejected:
			return Decision{Status: status, DecidedAt: at}.Apply(*p)
		}
		return *p
	}

	s := Summarize([]Proposal{mk(StatusAccepted), mk(StatusRejected), mk(StatusRejected), mk(StatusAccepted), mk(StatusPending)}, now)
	assert.Equal(t, Summary{
		Total:              5,
		Pending:            1,
		Accepted:           2,
		Rejected:           2,
		AcceptedTotalValue: 65400,
		PendingTotalValue:  32700,
		AcceptanceRatePct:  50,
	}, s)

	assert.Equal(t, Summary{}, Summarize(nil, now))
}

func TestParsers(t *testing.T) {
	st, err := NewStatus(" Accepted ")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, st)
	assert.True(t, st.IsTerminal())

	a, err := NewAction("sell")
	require.NoError(t, err)
	assert.Equal(t, ActionSell, a)

	_, err = NewRiskLevel("extreme")
	assert.Error(t, err)
	_, err = NewStatus("expired")
	assert.Error(t, err)
}
