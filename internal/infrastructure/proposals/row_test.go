package proposals

import (
	"testing"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func pendingRow() proposalRow {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	return proposalRow{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Title:            "Bitcoin (BTC)",
		Action:           "buy",
		Units:            0.5,
		UnitPrice:        65400,
		InvestmentAmount: 32700,
		RiskLevel:        "MEDIUM",
		Description:      strPtr("Strong support levels"),
		Status:           "pending",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestRowToDomain(t *testing.T) {
	p, err := pendingRow().toDomain()
	require.NoError(t, err)

	assert.Equal(t, domain.ActionBuy, p.Action)
	assert.Equal(t, domain.RiskMedium, p.RiskLevel)
	assert.Equal(t, "Strong support levels", p.Rationale)
	assert.Equal(t, time.UTC, p.CreatedAt.Location())
	assert.Nil(t, p.Signature)
}

func TestRowToDomainAccepted(t *testing.T) {
	row := pendingRow()
	decided := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)
	row.Status = "accepted"
	row.ClientDecisionDate = &decided
	row.DigitalSignature = strPtr("0xabc")

	p, err := row.toDomain()
	require.NoError(t, err)
	require.NotNil(t, p.Signature)
	assert.Equal(t, "0xabc", *p.Signature)
	assert.True(t, p.DecisionAt.Equal(decided))
}

func TestRowToDomainRejectsBrokenRows(t *testing.T) {
	decided := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name   string
		mutate func(*proposalRow)
		want   error
	}{
		{"accepted without signature", func(r *proposalRow) { r.Status = "accepted"; r.ClientDecisionDate = &decided }, domain.ErrSignatureMismatch},
		{"accepted with empty signature", func(r *proposalRow) {
			r.Status = "accepted"
			r.ClientDecisionDate = &decided
			r.DigitalSignature = strPtr("")
		}, domain.ErrSignatureMismatch},
		{"rejected with signature", func(r *proposalRow) {
			r.Status = "rejected"
			r.ClientDecisionDate = &decided
			r.DigitalSignature = strPtr("0x1")
		}, domain.ErrSignatureMismatch},
		{"pending with decision date", func(r *proposalRow) { r.ClientDecisionDate = &decided }, domain.ErrDecisionMismatch},
		{"total off", func(r *proposalRow) { r.InvestmentAmount = 30000 }, domain.ErrTotalMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := pendingRow()
			tt.mutate(&row)
			_, err := row.toDomain()
			assert.ErrorIs(t, err, tt.want)
		})
	}

	row := pendingRow()
	row.Status = "expired"
	_, err := row.toDomain()
	assert.Error(t, err)
}
