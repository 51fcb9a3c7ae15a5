package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"ebridge-portal/internal/domain/entity/activity"
	domain "ebridge-portal/internal/domain/entity/documents"
	"ebridge-portal/internal/domain/entity/session"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultMaxFileSize int64 = 10 << 20

// AllowedMimeTypes lists the accepted upload content types.
var AllowedMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type UploadRequest struct {
	Type        domain.DocumentType
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Option func(*Service)

func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

func WithPublisher(pub interfaces.EventPublisher) Option {
	return func(s *Service) { s.publisher = pub }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.WithField("component", "documents")
		}
	}
}

type Service struct {
	repo      interfaces.DocumentRepository
	storage   interfaces.FileStorage
	publisher interfaces.EventPublisher
	maxSize   int64
	logger    *logrus.Entry
	now       func() time.Time
}

func NewService(repo interfaces.DocumentRepository, storage interfaces.FileStorage, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		storage: storage,
		maxSize: DefaultMaxFileSize,
		logger:  logrus.StandardLogger().WithField("component", "documents"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores the file first and records the document row after the object exists.
func (s *Service) Upload(ctx context.Context, sess session.Session, req UploadRequest) (*domain.Document, error) {
	if sess.UserID == uuid.Nil {
		return nil, session.ErrAnonymous
	}
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", req.Type)
	}
	name := sanitizeFileName(req.FileName)
	if name == "" {
		return nil, domain.ErrMissingFile
	}
	if req.Size <= 0 || req.Body == nil {
		return nil, ErrEmptyFile
	}
	if req.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, req.Size)
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(req.ContentType, ";")[0]))
	if _, ok := AllowedMimeTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, req.ContentType)
	}

	now := s.now().UTC()
	key := ObjectKey(sess.UserID, req.Type, name, now)
	if err := s.storage.Put(ctx, key, contentType, io.LimitReader(req.Body, req.Size), req.Size); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	doc := &domain.Document{
		UserID:    sess.UserID,
		Type:      req.Type,
		FileName:  name,
		ObjectKey: key,
		FileSize:  req.Size,
		MimeType:  contentType,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.WithError(err).WithField("object_key", key).Error("document row not saved after upload")
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"user_id":     doc.UserID,
		"type":        doc.Type,
		"size":        doc.FileSize,
	}).Info("document uploaded")
	s.publish(ctx, activity.NewEvent(sess.UserID, activity.KindDocumentUploaded, map[string]any{
		"document_id":   doc.ID.String(),
		"document_type": string(doc.Type),
	}, now))
	return doc, nil
}

// List returns the session user's documents, newest first.
func (s *Service) List(ctx context.Context, sess session.Session) ([]domain.Document, error) {
	if sess.UserID == uuid.Nil {
		return nil, session.ErrAnonymous
	}
	return s.repo.ListByUser(ctx, sess.UserID)
}

func (s *Service) Checklist(ctx context.Context, sess session.Session) (domain.Checklist, error) {
	docs, err := s.List(ctx, sess)
	if err != nil {
		return domain.Checklist{}, err
	}
	return domain.BuildChecklist(docs), nil
}

// ListForReview returns documents in the given status; an empty status lists all. Staff only.
func (s *Service) ListForReview(ctx context.Context, sess session.Session, status domain.Status) ([]domain.Document, error) {
	if !sess.IsStaff() {
		return nil, ErrForbidden
	}
	return s.repo.ListByStatus(ctx, status)
}

// Review approves or rejects a pending document. Staff only.
func (s *Service) Review(ctx context.Context, sess session.Session, id uuid.UUID, approve bool, notes string) (*domain.Document, error) {
	if !sess.IsStaff() {
		return nil, ErrForbidden
	}
	now := s.now().UTC()
	doc, err := s.repo.SaveReview(ctx, domain.Review{
		DocumentID: id,
		Approve:    approve,
		Notes:      notes,
		ReviewerID: sess.UserID,
		ReviewedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"status":      doc.Status,
		"reviewer":    sess.UserID,
	}).Info("document reviewed")
	s.publish(ctx, activity.NewEvent(doc.UserID, activity.KindDocumentReviewed, map[string]any{
		"document_id": doc.ID.String(),
		"status":      string(doc.Status),
		"reviewed_by": sess.UserID.String(),
	}, now))
	return doc, nil
}

// DownloadURL returns a time-limited link to the stored file. The owner and staff may read it.
func (s *Service) DownloadURL(ctx context.Context, sess session.Session, id uuid.UUID) (string, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !sess.CanAccess(doc.UserID) {
		return "", ErrForbidden
	}
	url, err := s.storage.URL(ctx, doc.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return url, nil
}

func (s *Service) Close() {
	s.repo.Close()
}

func (s *Service) publish(ctx context.Context, event activity.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("kind", event.Kind).Warn("publish activity event failed")
	}
}

// ObjectKey builds the storage key <user>/<type>_<unixmillis>_<file>.
func ObjectKey(userID uuid.UUID, docType domain.DocumentType, fileName string, at time.Time) string {
	return fmt.Sprintf("%s/%s_%d_%s", userID, docType, at.UnixMilli(), fileName)
}

func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_")
}
