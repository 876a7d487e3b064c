package types

import "time"

// Document is the metadata row for a file attached to a project and,
// optionally, to one checklist item. The binary lives in the blob backend
// under StorageKey.
type Document struct {
	ID          string            `db:"id" json:"id"`
	ProjectID   string            `db:"project_id" json:"projectId"`
	ChecklistID *string           `db:"checklist_id" json:"checklistId,omitempty"`
	FileName    string            `db:"file_name" json:"fileName"`
	StorageKey  string            `db:"storage_key" json:"storageKey"`
	FileSize    int64             `db:"file_size" json:"fileSize"`
	MimeType    string            `db:"mime_type" json:"mimeType"`
	UploadedBy  string            `db:"uploaded_by" json:"uploadedBy"`
	UploadedAt  time.Time         `db:"uploaded_at" json:"uploadedAt"`
	Metadata    map[string]string `db:"metadata" json:"metadata,omitempty"`

	UploadedByName *string `db:"-" json:"uploadedByName,omitempty"`
}
