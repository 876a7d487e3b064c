package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"auditdesk/internal/audit"
	"auditdesk/internal/auth"
	"auditdesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config
	audit  *audit.Service
	auth   auth.Provider
	links  *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	auditService *audit.Service,
	provider auth.Provider,
) (*Service, error) {
	links, err := newLinkSigner(config, logger)
	if err != nil {
		return nil, err
	}

	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,
		audit:  auditService,
		auth:   provider,
		links:  links,
	}

	s.buildRouter(mux)
	s.handler = s.CORS(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// newLinkSigner seals download tokens. Without configured keys it generates
// random ones, which invalidates outstanding links on restart.
func newLinkSigner(config *types.Config, logger *logrus.Logger) (*securecookie.SecureCookie, error) {
	var hashKey, blockKey []byte
	if config.LinkHashKey != "" {
		var err error
		hashKey, err = base64.StdEncoding.DecodeString(config.LinkHashKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode link hash key: %w", err)
		}
		if config.LinkBlockKey != "" {
			blockKey, err = base64.StdEncoding.DecodeString(config.LinkBlockKey)
			if err != nil {
				return nil, fmt.Errorf("failed to decode link block key: %w", err)
			}
		}
	} else {
		logger.Warn("LINK_HASH_KEY not set, generating ephemeral download link keys")
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
	}

	links := securecookie.New(hashKey, blockKey)
	links.MaxAge(int(config.DownloadLinkTTL.Seconds()))
	return links, nil
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, fmt.Errorf("route %s %w", r.URL.Path, types.ErrNotFound))
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusMethodNotAllowed, envelope{Message: "method not allowed"})
	})

	r.Use(s.LoggingMiddleware)
	r.Use(s.Recoverer)

	r.HandleFunc("/api/health", s.handleHealth, http.MethodGet)

	r.HandleFunc("/api/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/auth/refresh", s.handleRefresh, http.MethodPost)

	// The token in the query string is the credential for this route.
	r.HandleFunc("/api/documents/download", s.handleDownloadDocument, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/auth/me", s.handleMe, http.MethodGet)
		r.HandleFunc("/api/auth/register", s.allow(auth.ActionRegisterUser, s.handleRegister), http.MethodPost)

		r.HandleFunc("/api/clients", s.handleListClients, http.MethodGet)
		r.HandleFunc("/api/clients", s.allow(auth.ActionManageClients, s.handleCreateClient), http.MethodPost)
		r.HandleFunc("/api/clients/:id", s.handleGetClient, http.MethodGet)
		r.HandleFunc("/api/clients/:id", s.allow(auth.ActionManageClients, s.handleUpdateClient), http.MethodPut)
		r.HandleFunc("/api/clients/:id", s.allow(auth.ActionDeleteClient, s.handleDeleteClient), http.MethodDelete)

		r.HandleFunc("/api/projects", s.handleListProjects, http.MethodGet)
		r.HandleFunc("/api/projects", s.allow(auth.ActionCreateProject, s.handleCreateProject), http.MethodPost)
		r.HandleFunc("/api/projects/:id", s.handleGetProject, http.MethodGet)
		r.HandleFunc("/api/projects/:id", s.allow(auth.ActionDeleteProject, s.handleDeleteProject), http.MethodDelete)
		r.HandleFunc("/api/projects/:id/status", s.allow(auth.ActionSetProjectStatus, s.handleSetProjectStatus), http.MethodPatch)
		r.HandleFunc("/api/projects/:id/team", s.handleListTeam, http.MethodGet)
		r.HandleFunc("/api/projects/:id/team", s.allow(auth.ActionManageTeam, s.handleAddTeamMember), http.MethodPost)
		r.HandleFunc("/api/projects/:id/progress", s.handleProjectProgress, http.MethodGet)

		r.HandleFunc("/api/checklists/project/:projectId", s.handleListChecklist, http.MethodGet)
		r.HandleFunc("/api/checklists", s.allow(auth.ActionBuildChecklist, s.handleCreateChecklistItem), http.MethodPost)
		r.HandleFunc("/api/checklists/bulk", s.allow(auth.ActionBuildChecklist, s.handleBulkCreateChecklist), http.MethodPost)
		r.HandleFunc("/api/checklists/template/:projectId", s.allow(auth.ActionBuildChecklist, s.handleApplyTemplate), http.MethodPost)
		r.HandleFunc("/api/checklists/:id/status", s.handleSetChecklistStatus, http.MethodPatch)
		r.HandleFunc("/api/checklists/:id/review", s.handleToggleReview, http.MethodPatch)
		r.HandleFunc("/api/checklists/:id/signoff", s.handleFinalSignOff, http.MethodPatch)
		r.HandleFunc("/api/checklists/:id", s.handleDeleteChecklistItem, http.MethodDelete)

		r.HandleFunc("/api/documents/upload", s.handleUploadDocument, http.MethodPost)
		r.HandleFunc("/api/documents/project/:projectId", s.handleProjectDocuments, http.MethodGet)
		r.HandleFunc("/api/documents/project/:projectId/objects", s.allow(auth.ActionListStoredObjects, s.handleStoredObjects), http.MethodGet)
		r.HandleFunc("/api/documents/checklist/:checklistId", s.handleChecklistDocuments, http.MethodGet)
		r.HandleFunc("/api/documents/:id/link", s.handleDocumentLink, http.MethodGet)
		r.HandleFunc("/api/documents/:id", s.handleDeleteDocument, http.MethodDelete)

		r.HandleFunc("/api/dashboard/summary", s.handleDashboardSummary, http.MethodGet)
		r.HandleFunc("/api/dashboard/team-workload", s.handleTeamWorkload, http.MethodGet)
		r.HandleFunc("/api/dashboard/pending-tasks", s.handlePendingTasks, http.MethodGet)
		r.HandleFunc("/api/dashboard/activity", s.handleProjectActivity, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.ok(w, http.StatusOK, "", map[string]string{
		"status":      "ok",
		"environment": s.config.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
