package documents

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChecklistEmpty(t *testing.T) {
	c := BuildChecklist(nil)

	require.Len(t, c.Items, len(Requirements))
	assert.Equal(t, 3, c.RequiredTotal)
	assert.Zero(t, c.Completed)
	assert.False(t, c.Complete())
	for _, item := range c.Items {
		assert.Equal(t, StatusNotUploaded, item.Status)
		assert.Nil(t, item.DocumentID)
	}
}

func TestBuildChecklistUsesLatestUpload(t *testing.T) {
	user := uuid.New()
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	rejected := Document{ID: uuid.New(), UserID: user, Type: TypePassport, Status: StatusRejected, ReviewNotes: "blurry", CreatedAt: base}
	reupload := Document{ID: uuid.New(), UserID: user, Type: TypePassport, Status: StatusApproved, CreatedAt: base.Add(time.Hour)}
	address := Document{ID: uuid.New(), UserID: user, Type: TypeAddressProof, Status: StatusApproved, CreatedAt: base}
	funds := Document{ID: uuid.New(), UserID: user, Type: TypeSourceOfFunds, Status: StatusPending, CreatedAt: base}

	c := BuildChecklist([]Document{reupload, rejected, address, funds})

	assert.Equal(t, 2, c.Completed)
	assert.False(t, c.Complete())
	passport := c.Items[0]
	assert.Equal(t, TypePassport, passport.Type)
	assert.Equal(t, StatusApproved, passport.Status)
	require.NotNil(t, passport.DocumentID)
	assert.Equal(t, reupload.ID.String(), *passport.DocumentID)

	funds.Status = StatusApproved
	c = BuildChecklist([]Document{reupload, address, funds})
	assert.True(t, c.Complete(), "optional tax document is not needed")
}

func TestReviewApply(t *testing.T) {
	doc := Document{ID: uuid.New(), Status: StatusPending}
	at := time.Date(2024, 1, 12, 15, 0, 0, 0, time.UTC)
	reviewer := uuid.New()

	out, err := Review{DocumentID: doc.ID, Approve: false, Notes: " expired ", ReviewerID: reviewer, ReviewedAt: at}.Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Status)
	assert.Equal(t, "expired", out.ReviewNotes)
	require.NotNil(t, out.ReviewedBy)
	assert.Equal(t, reviewer, *out.ReviewedBy)

	_, err = Review{DocumentID: doc.ID, Approve: true}.Apply(out)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestNewDocumentType(t *testing.T) {
	dt, err := NewDocumentType("Source_Of_Funds")
	require.NoError(t, err)
	assert.Equal(t, TypeSourceOfFunds, dt)

	_, err = NewDocumentType("selfie")
	assert.Error(t, err)
}
