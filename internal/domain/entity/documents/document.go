package documents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	TypePassport      DocumentType = "passport"
	TypeAddressProof  DocumentType = "address_proof"
	TypeSourceOfFunds DocumentType = "source_of_funds"
	TypeTaxDocument   DocumentType = "tax_document"
)

// Requirement describes one entry of the KYC checklist.
type Requirement struct {
	Type        DocumentType `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Required    bool         `json:"required"`
}

// Requirements is the KYC catalogue in display order.
var Requirements = []Requirement{
	{Type: TypePassport, Name: "Passport or ID Card", Description: "Government-issued photo identification", Required: true},
	{Type: TypeAddressProof, Name: "Proof of Address", Description: "Utility bill or bank statement (max 3 months old)", Required: true},
	{Type: TypeSourceOfFunds, Name: "Source of Funds", Description: "Bank statements or income verification", Required: true},
	{Type: TypeTaxDocument, Name: "Tax Documentation", Description: "Tax residency certificate or equivalent", Required: false},
}

func (t DocumentType) IsValid() bool {
	_, ok := RequirementFor(t)
	return ok
}

func RequirementFor(t DocumentType) (Requirement, bool) {
	for _, r := range Requirements {
		if r.Type == t {
			return r, true
		}
	}
	return Requirement{}, false
}

func NewDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid document type: %s", s)
	}
	return t, nil
}

type Status string

const (
	StatusNotUploaded Status = "not_uploaded"
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

func (s Status) IsStored() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func NewStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsStored() {
		return "", fmt.Errorf("invalid document status: %s", s)
	}
	return st, nil
}

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyReviewed = errors.New("document already reviewed")
	ErrMissingFile     = errors.New("document file name is required")
)

// Document is an uploaded KYC file awaiting or past staff review.
type Document struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Type        DocumentType `json:"document_type"`
	FileName    string       `json:"file_name"`
	ObjectKey   string       `json:"object_key"`
	FileSize    int64        `json:"file_size"`
	MimeType    string       `json:"mime_type"`
	Status      Status       `json:"status"`
	ReviewNotes string       `json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID   `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Review is the staff verdict on a pending document.
type Review struct {
	DocumentID uuid.UUID
	Approve    bool
	Notes      string
	ReviewerID uuid.UUID
	ReviewedAt time.Time
}

func (r Review) Status() Status {
	if r.Approve {
		return StatusApproved
	}
	return StatusRejected
}

// Apply returns d with the review applied, or ErrAlreadyReviewed when d is not pending.
func (r Review) Apply(d Document) (Document, error) {
	if d.Status != StatusPending {
		return d, ErrAlreadyReviewed
	}
	at := r.ReviewedAt.UTC()
	reviewer := r.ReviewerID
	d.Status = r.Status()
	d.ReviewNotes = strings.TrimSpace(r.Notes)
	d.ReviewedBy = &reviewer
	d.ReviewedAt = &at
	d.UpdatedAt = at
	return d, nil
}
