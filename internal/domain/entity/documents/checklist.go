package documents

import "time"

type ChecklistItem struct {
	Requirement
	Status     Status     `json:"status"`
	DocumentID *string    `json:"document_id,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Checklist is the per-client KYC progress view.
type Checklist struct {
	Items         []ChecklistItem `json:"items"`
	Completed     int             `json:"completed"`
	RequiredTotal int             `json:"required_total"`
}

// Complete reports whether every required document has been approved.
func (c Checklist) Complete() bool {
	return c.Completed == c.RequiredTotal
}

// BuildChecklist maps the latest upload of each type onto the requirement catalogue.
func BuildChecklist(docs []Document) Checklist {
	latest := make(map[DocumentType]Document, len(Requirements))
	for _, d := range docs {
		cur, ok := latest[d.Type]
		if !ok || d.CreatedAt.After(cur.CreatedAt) {
			latest[d.Type] = d
		}
	}

	out := Checklist{Items: make([]ChecklistItem, 0, len(Requirements))}
	for _, req := range Requirements {
		item := ChecklistItem{Requirement: req, Status: StatusNotUploaded}
		if d, ok := latest[req.Type]; ok {
			id := d.ID.String()
			uploaded := d.CreatedAt
			item.Status = d.Status
			item.DocumentID = &id
			item.UploadedAt = &uploaded
			item.Notes = d.ReviewNotes
		}
		if req.Required {
			out.RequiredTotal++
			if item.Status == StatusApproved {
				out.Completed++
			}
		}
		out.Items = append(out.Items, item)
	}
	return out
}
