package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	domain "ebridge-portal/internal/domain/entity/documents"

	"github.com/google/uuid"
)

type DocumentRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{items: make(map[uuid.UUID]domain.Document)}
}

func (r *DocumentRepository) Create(_ context.Context, doc *domain.Document) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[doc.ID] = *doc
	return nil
}

func (r *DocumentRepository) Get(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *DocumentRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Document, error) {
	return r.filter(func(d domain.Document) bool { return d.UserID == userID }), nil
}

func (r *DocumentRepository) ListByStatus(_ context.Context, status domain.Status) ([]domain.Document, error) {
	return r.filter(func(d domain.Document) bool { return status == "" || d.Status == status }), nil
}

func (r *DocumentRepository) SaveReview(_ context.Context, review domain.Review) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[review.DocumentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated, err := review.Apply(d)
	if err != nil {
		return nil, err
	}
	r.items[updated.ID] = updated
	return &updated, nil
}

func (r *DocumentRepository) Close() {}

func (r *DocumentRepository) filter(match func(domain.Document) bool) []domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Document, 0, len(r.items))
	for _, d := range r.items {
		if match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FileStorage keeps uploaded objects in memory. URLs point at baseURL/<key>, which the
// HTTP handler serves when the storage is passed to it.
type FileStorage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

func NewFileStorage(baseURL string) *FileStorage {
	return &FileStorage{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string]storedObject)}
}

func (s *FileStorage) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (s *FileStorage) URL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return s.baseURL + "/" + key, nil
}

// Object returns the stored bytes and content type of key.
func (s *FileStorage) Object(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj.data, obj.contentType, ok
}
