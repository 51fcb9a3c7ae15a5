package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	domain "ebridge-portal/internal/domain/entity/documents"
	"ebridge-portal/internal/domain/entity/session"
	"ebridge-portal/internal/infrastructure/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

type brokenStorage struct{}

func (brokenStorage) Put(context.Context, string, string, io.Reader, int64) error {
	return errors.New("bucket unavailable")
}

func (brokenStorage) URL(context.Context, string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func newSession(t *testing.T, role session.Role) session.Session {
	t.Helper()
	sess, err := session.New(uuid.New(), "user@example.com", role)
	require.NoError(t, err)
	return sess
}

func pdfUpload(docType domain.DocumentType, name string) UploadRequest {
	body := []byte("%PDF-1.7 test")
	return UploadRequest{
		Type:        docType,
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func newTestService(storage *memory.FileStorage, events *memory.EventLog) (*Service, *memory.DocumentRepository) {
	repo := memory.NewDocumentRepository()
	return NewService(repo, storage,
		WithPublisher(events),
		WithClock(func() time.Time { return fixedNow }),
	), repo
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewFileStorage("http://files.local")
	events := memory.NewEventLog()
	svc, _ := newTestService(storage, events)
	sess := newSession(t, session.RoleClient)

	doc, err := svc.Upload(ctx, sess, pdfUpload(domain.TypePassport, "../my passport.pdf"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Equal(t, "my_passport.pdf", doc.FileName)
	assert.Equal(t, sess.UserID.String()+"/passport_1705309200000_my_passport.pdf", doc.ObjectKey)

	data, _, ok := storage.Object(doc.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.7 test", string(data))

	published := events.Events()
	require.Len(t, published, 1)
	assert.Equal(t, "document.uploaded", string(published[0].Kind))
}

func TestUploadValidation(t *testing.T) {
	sess := newSession(t, session.RoleClient)
	tests := []struct {
		name   string
		mutate func(*UploadRequest)
		want   error
	}{
		{"too large", func(r *UploadRequest) { r.Size = DefaultMaxFileSize + 1 }, ErrFileTooLarge},
		{"unsupported mime", func(r *UploadRequest) { r.ContentType = "text/plain" }, ErrUnsupportedType},
		{"empty", func(r *UploadRequest) { r.Size = 0 }, ErrEmptyFile},
		{"missing name", func(r *UploadRequest) { r.FileName = "  " }, domain.ErrMissingFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := memory.NewFileStorage("http://files.local")
			svc, repo := newTestService(storage, memory.NewEventLog())
			req := pdfUpload(domain.TypeAddressProof, "bill.pdf")
			tt.mutate(&req)

			_, err := svc.Upload(context.Background(), sess, req)
			assert.ErrorIs(t, err, tt.want)

			docs, err := repo.ListByUser(context.Background(), sess.UserID)
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}

	svc, _ := newTestService(memory.NewFileStorage(""), memory.NewEventLog())
	req := pdfUpload("selfie", "me.pdf")
	_, err := svc.Upload(context.Background(), sess, req)
	assert.Error(t, err)
}

func TestUploadAcceptsContentTypeParameters(t *testing.T) {
	svc, _ := newTestService(memory.NewFileStorage(""), memory.NewEventLog())
	req := pdfUpload(domain.TypeTaxDocument, "scan.png")
	req.ContentType = "image/PNG; charset=binary"

	doc, err := svc.Upload(context.Background(), newSession(t, session.RoleClient), req)
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.MimeType)
}

func TestUploadStorageFailureSkipsRow(t *testing.T) {
	repo := memory.NewDocumentRepository()
	svc := NewService(repo, brokenStorage{})
	sess := newSession(t, session.RoleClient)

	_, err := svc.Upload(context.Background(), sess, pdfUpload(domain.TypePassport, "id.pdf"))
	assert.ErrorIs(t, err, ErrStorage)

	docs, err := repo.ListByUser(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestChecklistAndReview(t *testing.T) {
	ctx := context.Background()
	events := memory.NewEventLog()
	svc, _ := newTestService(memory.NewFileStorage("http://files.local"), events)
	client := newSession(t, session.RoleClient)
	staff := newSession(t, session.RoleStaff)

	var uploaded []*domain.Document
	for _, dt := range []domain.DocumentType{domain.TypePassport, domain.TypeAddressProof, domain.TypeSourceOfFunds} {
		doc, err := svc.Upload(ctx, client, pdfUpload(dt, string(dt)+".pdf"))
		require.NoError(t, err)
		uploaded = append(uploaded, doc)
	}

	checklist, err := svc.Checklist(ctx, client)
	require.NoError(t, err)
	assert.Zero(t, checklist.Completed)

	_, err = svc.Review(ctx, client, uploaded[0].ID, true, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ListForReview(ctx, client, domain.StatusPending)
	assert.ErrorIs(t, err, ErrForbidden)

	queue, err := svc.ListForReview(ctx, staff, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, queue, 3)

	for _, doc := range uploaded {
		reviewed, err := svc.Review(ctx, staff, doc.ID, true, "ok")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, reviewed.Status)
	}
	_, err = svc.Review(ctx, staff, uploaded[0].ID, false, "late")
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)

	checklist, err = svc.Checklist(ctx, client)
	require.NoError(t, err)
	assert.True(t, checklist.Complete())
	assert.Len(t, events.Events(), 6)
}

func TestDownloadURL(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(memory.NewFileStorage("http://files.local"), memory.NewEventLog())
	owner := newSession(t, session.RoleClient)
	doc, err := svc.Upload(ctx, owner, pdfUpload(domain.TypePassport, "id.pdf"))
	require.NoError(t, err)

	url, err := svc.DownloadURL(ctx, owner, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/"+doc.ObjectKey, url)

	_, err = svc.DownloadURL(ctx, newSession(t, session.RoleClient), doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.DownloadURL(ctx, newSession(t, session.RoleStaff), doc.ID)
	assert.NoError(t, err)

	_, err = svc.DownloadURL(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
