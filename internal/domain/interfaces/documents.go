package interfaces

//go:generate mockgen -source=documents.go -destination=mocks/mock_documents.go -package=mocks

import (
	"context"
	"io"

	"ebridge-portal/internal/domain/entity/documents"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *documents.Document) error
	Get(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]documents.Document, error)
	ListByStatus(ctx context.Context, status documents.Status) ([]documents.Document, error)
	// SaveReview persists the review only while the stored status is pending.
	SaveReview(ctx context.Context, review documents.Review) (*documents.Document, error)
	Close()
}

// FileStorage hosts the uploaded KYC files.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	URL(ctx context.Context, key string) (string, error)
}
