package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "ebridge-portal/internal/domain/entity/documents"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Repository stores KYC document rows through database/sql.
type Repository struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewRepository(db), nil
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() {
	if r == nil || r.db == nil {
		return
	}
	_ = r.db.Close()
}

const documentColumns = `id, user_id, document_type, file_name, object_key, file_size, mime_type, status, review_notes, reviewed_by, reviewed_at, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}

	const query = `
		INSERT INTO kyc_documents (id, user_id, document_type, file_name, object_key, file_size, mime_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		string(doc.Type),
		doc.FileName,
		doc.ObjectKey,
		doc.FileSize,
		doc.MimeType,
		string(doc.Status),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM kyc_documents WHERE id = $1", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Document, error) {
	return r.list(ctx, "SELECT "+documentColumns+" FROM kyc_documents WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

// ListByStatus lists documents in status, oldest first so the review queue is FIFO. An empty
// status lists everything.
func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Document, error) {
	if status == "" {
		return r.list(ctx, "SELECT "+documentColumns+" FROM kyc_documents ORDER BY created_at ASC")
	}
	return r.list(ctx, "SELECT "+documentColumns+" FROM kyc_documents WHERE status = $1 ORDER BY created_at ASC", string(status))
}

func (r *Repository) SaveReview(ctx context.Context, review domain.Review) (*domain.Document, error) {
	const query = `
		UPDATE kyc_documents
		SET status = $2, review_notes = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, query,
		review.DocumentID,
		string(review.Status()),
		review.Notes,
		review.ReviewerID,
		review.ReviewedAt.UTC(),
	)
	doc, err := scanDocument(row)
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, getErr := r.Get(ctx, review.DocumentID); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrAlreadyReviewed
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (domain.Document, error) {
	var (
		doc        domain.Document
		docType    string
		status     string
		notes      sql.NullString
		reviewedBy uuid.NullUUID
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&docType,
		&doc.FileName,
		&doc.ObjectKey,
		&doc.FileSize,
		&doc.MimeType,
		&status,
		&notes,
		&reviewedBy,
		&reviewedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.Type, err = domain.NewDocumentType(docType); err != nil {
		return domain.Document{}, err
	}
	if doc.Status, err = domain.NewStatus(status); err != nil {
		return domain.Document{}, err
	}
	doc.ReviewNotes = notes.String
	if reviewedBy.Valid {
		id := reviewedBy.UUID
		doc.ReviewedBy = &id
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time.UTC()
		doc.ReviewedAt = &at
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return doc, nil
}
