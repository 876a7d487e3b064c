package server

import (
	"net/http"
)

func (s *Service) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.audit.Summary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", summary)
}

func (s *Service) handleTeamWorkload(w http.ResponseWriter, r *http.Request) {
	workload, err := s.audit.TeamWorkload(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", workload)
}

func (s *Service) handlePendingTasks(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tasks, err := s.audit.PendingTasks(r.Context(), identity.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", tasks)
}

func (s *Service) handleProjectActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.audit.ProjectActivity(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", activity)
}
