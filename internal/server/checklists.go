package server

import (
	"net/http"

	"auditdesk/pkg/types"
)

type bulkChecklistRequest struct {
	ProjectID string                    `json:"projectId"`
	Items     []*types.NewChecklistItem `json:"checklists"`
}

type checklistStatusRequest struct {
	Status types.ChecklistStatus `json:"status"`
}

type reviewRequest struct {
	Column types.SignOffColumn `json:"column"`
}

type signOffRequest struct {
	SignedOffBy string `json:"signedOffBy"`
}

func (s *Service) handleListChecklist(w http.ResponseWriter, r *http.Request) {
	items, err := s.audit.ChecklistItems(r.Context(), r.PathValue("projectId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", items)
}

func (s *Service) handleCreateChecklistItem(w http.ResponseWriter, r *http.Request) {
	var body types.NewChecklistItem
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.audit.CreateChecklistItem(r.Context(), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Checklist item created", item)
}

func (s *Service) handleBulkCreateChecklist(w http.ResponseWriter, r *http.Request) {
	var body bulkChecklistRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.audit.BulkCreateChecklistItems(r.Context(), body.ProjectID, body.Items)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Checklist items created", items)
}

func (s *Service) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	items, err := s.audit.ApplyTemplate(r.Context(), r.PathValue("projectId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Audit program applied", items)
}

func (s *Service) handleSetChecklistStatus(w http.ResponseWriter, r *http.Request) {
	var body checklistStatusRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.audit.SetChecklistStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Status updated", item)
}

func (s *Service) handleToggleReview(w http.ResponseWriter, r *http.Request) {
	var body reviewRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.audit.ToggleSignOff(r.Context(), r.PathValue("id"), body.Column)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Review updated", item)
}

// handleFinalSignOff signs as the caller. The body value is only used when
// the identity carries no user id.
func (s *Service) handleFinalSignOff(w http.ResponseWriter, r *http.Request) {
	var body signOffRequest
	if err := decodeOptionalJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	identity, err := identityFrom(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	signer := identity.UserID
	if signer == "" {
		signer = body.SignedOffBy
	}

	item, err := s.audit.FinalSignOff(r.Context(), r.PathValue("id"), signer)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Signed off", item)
}

func (s *Service) handleDeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	if err := s.audit.DeleteChecklistItem(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Checklist item deleted", nil)
}
