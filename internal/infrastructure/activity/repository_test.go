package activity

import (
	"testing"
	"time"

	domain "ebridge-portal/internal/domain/entity/activity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRows(t *testing.T) {
	user := uuid.New()
	at := time.Date(2024, 1, 16, 11, 30, 0, 0, time.FixedZone("CET", 3600))
	events := []domain.Event{
		{UserID: user, Kind: domain.KindPageView, OccurredAt: at},
		domain.NewEvent(user, domain.KindProposalDecided, map[string]any{"proposal_id": "p-1"}, at),
	}

	rows, err := eventRows(events)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.NotEqual(t, uuid.Nil, events[0].ID, "missing ids are assigned")
	assert.Equal(t, []byte("{}"), rows[0][3])
	assert.JSONEq(t, `{"proposal_id":"p-1"}`, string(rows[1][3].([]byte)))
	assert.Equal(t, "proposal.decided", rows[1][2])
	assert.Equal(t, time.UTC, rows[0][4].(time.Time).Location())
}

func TestEventRowsRejectsUnencodableProperties(t *testing.T) {
	_, err := eventRows([]domain.Event{{Kind: domain.KindLogin, Properties: map[string]any{"bad": make(chan int)}}})
	assert.Error(t, err)
}
