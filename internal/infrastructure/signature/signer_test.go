package signature

import (
	"context"
	"regexp"
	"testing"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (domain.Proposal, domain.Decision) {
	t.Helper()
	now := time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)
	p, err := domain.New(domain.NewParams{
		ClientID:  uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Title:     "Bitcoin (BTC)",
		Action:    domain.ActionBuy,
		Amount:    0.5,
		UnitPrice: 65400,
		RiskLevel: domain.RiskMedium,
	}, now)
	require.NoError(t, err)
	p.ID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	return *p, domain.Decision{ProposalID: p.ID, Status: domain.StatusAccepted, DecidedAt: now, DecidedBy: p.ClientID}
}

var tokenPattern = regexp.MustCompile(`^0x[0-9a-f]+$`)

func TestRandomSigner(t *testing.T) {
	p, d := fixture(t)
	a, err := RandomSigner{}.Sign(context.Background(), p, d)
	require.NoError(t, err)
	b, err := RandomSigner{}.Sign(context.Background(), p, d)
	require.NoError(t, err)

	assert.Regexp(t, tokenPattern, a)
	assert.Len(t, a, 34)
	assert.NotEqual(t, a, b)
}

func TestDigestSignerIsDeterministic(t *testing.T) {
	p, d := fixture(t)
	s, err := NewDigestSigner("k")
	require.NoError(t, err)

	a, err := s.Sign(context.Background(), p, d)
	require.NoError(t, err)
	b, err := s.Sign(context.Background(), p, d)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Regexp(t, tokenPattern, a)
	assert.Len(t, a, 66)
	assert.True(t, s.Verify(p, d, a))

	p.UnitPrice = 65500
	assert.False(t, s.Verify(p, d, a), "changed terms break the token")
}

func TestCanonicalTerms(t *testing.T) {
	p, d := fixture(t)
	out, err := CanonicalTerms(p, d)
	require.NoError(t, err)

	assert.Equal(t,
		`{"action":"BUY","amount":"0.5","client_id":"11111111-2222-3333-4444-555555555555","decided_at":"2024-01-16T10:30:00Z",`+
			`"decided_by":"11111111-2222-3333-4444-555555555555","proposal_id":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",`+
			`"risk_level":"medium","title":"Bitcoin (BTC)","total_value":"32700","unit_price":"65400"}`,
		string(out))
}

func TestNewDigestSignerRequiresKey(t *testing.T) {
	_, err := NewDigestSigner("")
	assert.Error(t, err)
}
