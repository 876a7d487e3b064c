package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"auditdesk/internal/audit"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

const downloadLinkName = "document-download"

type uploadForm struct {
	ProjectID   string  `form:"projectId"`
	ChecklistID *string `form:"checklistId"`
}

type downloadLink struct {
	DocumentID string `json:"documentId"`
	IssuedTo   string `json:"issuedTo"`
}

type downloadLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Service) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, fmt.Errorf("%w: file exceeds %d bytes", types.ErrValidation, s.config.MaxUploadBytes))
			return
		}
		s.fail(w, r, fmt.Errorf("%w: invalid multipart form: %s", types.ErrValidation, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var fields uploadForm
	if err := decoder.Decode(&fields, r.MultipartForm.Value); err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid form fields: %s", types.ErrValidation, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: a file is required", types.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := s.audit.UploadDocument(r.Context(), &audit.Upload{
		ProjectID:   fields.ProjectID,
		ChecklistID: fields.ChecklistID,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		UploadedBy:  identity.UserID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Document uploaded", doc)
}

func (s *Service) handleProjectDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.audit.ProjectDocuments(r.Context(), r.PathValue("projectId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", docs)
}

func (s *Service) handleChecklistDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.audit.ChecklistDocuments(r.Context(), r.PathValue("checklistId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", docs)
}

func (s *Service) handleStoredObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := s.audit.StoredObjects(r.Context(), r.PathValue("projectId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", objects)
}

// handleDocumentLink issues a sealed, time-limited token that lets a browser
// fetch the document without sending the bearer header.
func (s *Service) handleDocumentLink(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, err := s.audit.Document(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := s.links.Encode(downloadLinkName, downloadLink{DocumentID: doc.ID, IssuedTo: identity.UserID})
	if err != nil {
		s.fail(w, r, fmt.Errorf("failed to seal download link: %w", err))
		return
	}

	s.ok(w, http.StatusOK, "", downloadLinkResponse{
		URL:       "/api/documents/download?token=" + url.QueryEscape(token),
		ExpiresAt: time.Now().UTC().Add(s.config.DownloadLinkTTL),
	})
}

func (s *Service) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.fail(w, r, fmt.Errorf("missing download token: %w", types.ErrUnauthenticated))
		return
	}

	var link downloadLink
	if err := s.links.Decode(downloadLinkName, token, &link); err != nil {
		s.logger.WithError(err).Debug("rejected download token")
		s.fail(w, r, fmt.Errorf("invalid or expired download link: %w", types.ErrUnauthenticated))
		return
	}

	doc, body, err := s.audit.OpenDocument(r.Context(), link.DocumentID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"document_id": doc.ID,
			"issued_to":   link.IssuedTo,
		}).Error("failed to stream document")
	}
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.audit.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Document deleted", nil)
}
