package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"auditdesk/internal/storage"
	"auditdesk/internal/utils"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

type Upload struct {
	ProjectID   string
	ChecklistID *string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	UploadedBy  string
}

// UploadDocument writes the bytes to the blob backend and records metadata.
// If the metadata insert fails the blob is removed again.
func (s *Service) UploadDocument(ctx context.Context, in *Upload) (*types.Document, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, validationError("project id is required")
	}
	if strings.TrimSpace(in.FileName) == "" || in.Body == nil {
		return nil, validationError("a file is required")
	}

	if _, err := s.store.Project(ctx, in.ProjectID); err != nil {
		return nil, asValidation(err, "project %s does not exist", in.ProjectID)
	}

	checklistID := trimmed(in.ChecklistID)
	if checklistID != nil {
		item, err := s.store.ChecklistItem(ctx, *checklistID)
		if err != nil {
			return nil, asValidation(err, "checklist item %s does not exist", *checklistID)
		}
		if item.ProjectID != in.ProjectID {
			return nil, validationError("checklist item %s belongs to another project", *checklistID)
		}
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ObjectKey(in.ProjectID, in.FileName)
	counter := &countingReader{r: in.Body}
	if err := s.blobs.Upload(ctx, key, counter, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	size := in.Size
	if size <= 0 {
		size = counter.n
	}

	doc := &types.Document{
		ID:          utils.NanoID(),
		ProjectID:   in.ProjectID,
		ChecklistID: checklistID,
		FileName:    in.FileName,
		StorageKey:  key,
		FileSize:    size,
		MimeType:    contentType,
		UploadedBy:  in.UploadedBy,
		UploadedAt:  s.now(),
		Metadata: map[string]string{
			"originalName": in.FileName,
			"backend":      s.blobs.Name(),
		},
	}

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		s.removeBlob(ctx, doc)
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"project_id":  doc.ProjectID,
		"size":        doc.FileSize,
	}).Info("document uploaded")

	return doc, nil
}

func (s *Service) Document(ctx context.Context, documentID string) (*types.Document, error) {
	return s.store.Document(ctx, documentID)
}

func (s *Service) ProjectDocuments(ctx context.Context, projectID string) ([]*types.Document, error) {
	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.DocumentsByProject(ctx, projectID)
}

func (s *Service) ChecklistDocuments(ctx context.Context, checklistID string) ([]*types.Document, error) {
	if _, err := s.store.ChecklistItem(ctx, checklistID); err != nil {
		return nil, err
	}
	return s.store.DocumentsByChecklist(ctx, checklistID)
}

// OpenDocument returns the metadata and a reader over the stored bytes. The
// caller closes the reader.
func (s *Service) OpenDocument(ctx context.Context, documentID string) (*types.Document, io.ReadCloser, error) {
	doc, err := s.store.Document(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.blobs.Download(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, fmt.Errorf("content of document %s is missing: %w", documentID, types.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}

	return doc, body, nil
}

func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.store.Document(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	s.removeBlob(ctx, doc)
	return nil
}

// StoredObjects lists what the blob backend holds for a project, including
// objects no metadata row points at.
func (s *Service) StoredObjects(ctx context.Context, projectID string) ([]storage.Object, error) {
	if _, err := s.store.Project(ctx, projectID); err != nil {
		return nil, err
	}
	return s.blobs.List(ctx, projectID)
}

func (s *Service) removeBlob(ctx context.Context, doc *types.Document) {
	if strings.TrimSpace(doc.StorageKey) == "" {
		return
	}

	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.WithError(err).
			WithField("document_id", doc.ID).
			WithField("storage_key", doc.StorageKey).
			Error("failed to delete document from blob storage")
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
