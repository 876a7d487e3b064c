package server

import (
	"net/http"

	"auditdesk/internal/audit"
	"auditdesk/pkg/types"
)

func (s *Service) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.audit.Clients(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", clients)
}

func (s *Service) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.audit.Client(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", client)
}

func (s *Service) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var body audit.NewClient
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	client, err := s.audit.CreateClient(r.Context(), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Client created", client)
}

func (s *Service) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var body types.ClientUpdate
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	client, err := s.audit.UpdateClient(r.Context(), r.PathValue("id"), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Client updated", client)
}

func (s *Service) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.audit.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Client deleted", nil)
}
