package server

import (
	"fmt"
	"net/http"

	"auditdesk/internal/audit"
	"auditdesk/pkg/types"
)

type projectStatusRequest struct {
	Status types.ProjectStatus `json:"status"`
}

func (s *Service) handleListProjects(w http.ResponseWriter, r *http.Request) {
	var filter types.ProjectFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid query: %s", types.ErrValidation, err))
		return
	}

	projects, err := s.audit.Projects(r.Context(), &filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", projects)
}

func (s *Service) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.audit.Project(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", project)
}

func (s *Service) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body audit.NewProject
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	project, err := s.audit.CreateProject(r.Context(), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Project created", project)
}

func (s *Service) handleSetProjectStatus(w http.ResponseWriter, r *http.Request) {
	var body projectStatusRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	project, err := s.audit.SetProjectStatus(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Project status updated", project)
}

func (s *Service) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.audit.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "Project deleted", nil)
}

func (s *Service) handleListTeam(w http.ResponseWriter, r *http.Request) {
	members, err := s.audit.TeamMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", members)
}

func (s *Service) handleAddTeamMember(w http.ResponseWriter, r *http.Request) {
	var body audit.NewTeamMember
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	member, err := s.audit.AddTeamMember(r.Context(), r.PathValue("id"), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "Team member added", member)
}

func (s *Service) handleProjectProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.audit.ProjectProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", progress)
}
