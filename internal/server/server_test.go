package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auditdesk/internal/audit"
	"auditdesk/internal/auth"
	"auditdesk/internal/storage"
	"auditdesk/internal/store/memory"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	server  *httptest.Server
	handler http.Handler
	audit   *audit.Service
	admin   *types.User
	junior  *types.User
	client  *types.Client
	project *types.Project
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.New()
	svc := audit.New(logger, store, storage.NewMemory())

	provider, err := auth.NewLocal(store, "server-test-secret-value", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	config := &types.Config{
		Environment:     "test",
		CORSOrigin:      "http://localhost:5173",
		MaxUploadBytes:  1 << 20,
		DownloadLinkTTL: time.Hour,
	}

	srv, err := New(config, logger, svc, provider)
	require.NoError(t, err)

	h := &harness{server: httptest.NewServer(srv.Handler()), handler: srv.Handler(), audit: svc}
	t.Cleanup(h.server.Close)

	ctx := context.Background()
	h.admin, err = svc.RegisterUser(ctx, &audit.NewUser{Email: "admin@example.com", Password: "password123", FirstName: "Ada", LastName: "Admin", Role: types.RoleAdmin})
	require.NoError(t, err)
	h.junior, err = svc.RegisterUser(ctx, &audit.NewUser{Email: "junior@example.com", Password: "password123", FirstName: "Jo", LastName: "Junior", Role: types.RoleJuniorAuditor})
	require.NoError(t, err)

	h.client, err = svc.CreateClient(ctx, &audit.NewClient{LegalName: "Acme Holdings Ltd"})
	require.NoError(t, err)
	h.project, err = svc.CreateProject(ctx, &audit.NewProject{ClientID: h.client.ID, ProjectType: "Tax Audit"})
	require.NoError(t, err)

	return h
}

func (h *harness) login(t *testing.T, email string) *types.TokenPair {
	t.Helper()

	res := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, res.status)

	var tokens types.TokenPair
	require.NoError(t, json.Unmarshal(res.body.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return &tokens
}

type result struct {
	status int
	body   apiResponse
	header http.Header
}

func (h *harness) do(t *testing.T, method, path, token string, payload any) result {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return h.send(t, req)
}

func (h *harness) send(t *testing.T, req *http.Request) result {
	t.Helper()

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	out := result{status: res.StatusCode, header: res.Header}
	if res.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out.body))
	}
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	res := h.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.True(t, res.body.Success)
}

func TestMissingTokenIsUnauthenticated(t *testing.T) {
	h := newHarness(t)

	res := h.do(t, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.False(t, res.body.Success)

	res = h.do(t, http.MethodGet, "/api/clients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)

	res := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestJuniorCannotDeleteClientButCanUpdateChecklist(t *testing.T) {
	h := newHarness(t)
	junior := h.login(t, "junior@example.com")

	item, err := h.audit.CreateChecklistItem(context.Background(), &types.NewChecklistItem{ProjectID: h.project.ID, Code: "20-1", Title: "Engagement letter"})
	require.NoError(t, err)

	res := h.do(t, http.MethodDelete, "/api/clients/"+h.client.ID, junior.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = h.do(t, http.MethodPatch, "/api/checklists/"+item.ID+"/status", junior.AccessToken, map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, res.status)

	var updated types.ChecklistItem
	require.NoError(t, json.Unmarshal(res.body.Data, &updated))
	assert.Equal(t, types.ChecklistStatusInProgress, updated.Status)

	_, err = h.audit.Client(context.Background(), h.client.ID)
	require.NoError(t, err)
}

func TestClientEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")

	res := h.do(t, http.MethodPost, "/api/clients", admin.AccessToken, map[string]string{"legalName": "Globex Corp", "contactEmail": "cfo@globex.example"})
	require.Equal(t, http.StatusCreated, res.status)

	var created types.Client
	require.NoError(t, json.Unmarshal(res.body.Data, &created))
	assert.Equal(t, "CL-1002", created.Code)

	res = h.do(t, http.MethodPost, "/api/clients", admin.AccessToken, map[string]string{"legalName": "  "})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = h.do(t, http.MethodPut, "/api/clients/"+created.ID, admin.AccessToken, map[string]string{"status": "On-Hold"})
	require.Equal(t, http.StatusOK, res.status)

	res = h.do(t, http.MethodGet, "/api/clients", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var clients []*types.Client
	require.NoError(t, json.Unmarshal(res.body.Data, &clients))
	assert.Len(t, clients, 2)

	// Acme still has a project.
	res = h.do(t, http.MethodDelete, "/api/clients/"+h.client.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, res.status)

	res = h.do(t, http.MethodDelete, "/api/clients/"+created.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	res = h.do(t, http.MethodGet, "/api/clients/"+created.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestProjectEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")
	junior := h.login(t, "junior@example.com")

	res := h.do(t, http.MethodPost, "/api/projects", junior.AccessToken, map[string]string{"clientId": h.client.ID, "projectType": "Statutory Audit"})
	assert.Equal(t, http.StatusForbidden, res.status)

	res = h.do(t, http.MethodPost, "/api/projects", admin.AccessToken, map[string]string{"clientId": h.client.ID, "projectType": "Statutory Audit"})
	require.Equal(t, http.StatusCreated, res.status)

	var project types.Project
	require.NoError(t, json.Unmarshal(res.body.Data, &project))
	assert.Contains(t, project.Code, "CL-1001-SA-")

	res = h.do(t, http.MethodPatch, "/api/projects/"+project.ID+"/status", admin.AccessToken, map[string]string{"status": "In Progress"})
	require.Equal(t, http.StatusOK, res.status)

	res = h.do(t, http.MethodGet, "/api/projects?status=In+Progress", junior.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var projects []*types.Project
	require.NoError(t, json.Unmarshal(res.body.Data, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)

	res = h.do(t, http.MethodPost, "/api/projects/"+project.ID+"/team", admin.AccessToken, map[string]any{"userId": h.junior.ID, "workPercentage": 40})
	require.Equal(t, http.StatusCreated, res.status)

	res = h.do(t, http.MethodGet, "/api/projects/"+project.ID+"/team", junior.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var team []*types.TeamMember
	require.NoError(t, json.Unmarshal(res.body.Data, &team))
	assert.Len(t, team, 1)

	res = h.do(t, http.MethodGet, "/api/projects/does-not-exist", junior.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = h.do(t, http.MethodDelete, "/api/projects/"+project.ID, junior.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = h.do(t, http.MethodDelete, "/api/projects/"+project.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.status)
}

func TestChecklistEndpoints(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")

	res := h.do(t, http.MethodPost, "/api/checklists/bulk", admin.AccessToken, map[string]any{
		"projectId":  h.project.ID,
		"checklists": []map[string]string{
			{"checklistCode": "20-2", "checklistTitle": "Materiality"},
			{"checklistCode": "10-1", "checklistTitle": "Acceptance"},
		},
	})
	require.Equal(t, http.StatusCreated, res.status)

	res = h.do(t, http.MethodPost, "/api/checklists", admin.AccessToken, map[string]string{"projectId": "missing", "checklistCode": "10-9", "checklistTitle": "Orphan"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = h.do(t, http.MethodGet, "/api/checklists/project/"+h.project.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var items []*types.ChecklistItem
	require.NoError(t, json.Unmarshal(res.body.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "10-1", items[0].Code)

	res = h.do(t, http.MethodPatch, "/api/checklists/"+items[0].ID+"/review", admin.AccessToken, map[string]string{"column": "bogus"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = h.do(t, http.MethodPatch, "/api/checklists/"+items[0].ID+"/review", admin.AccessToken, map[string]string{"column": "na"})
	require.Equal(t, http.StatusOK, res.status)

	res = h.do(t, http.MethodPatch, "/api/checklists/"+items[1].ID+"/signoff", admin.AccessToken, map[string]string{"signedOffBy": h.junior.ID})
	require.Equal(t, http.StatusOK, res.status)
	var signed types.ChecklistItem
	require.NoError(t, json.Unmarshal(res.body.Data, &signed))
	assert.Equal(t, types.ChecklistStatusCompleted, signed.Status)
	require.NotNil(t, signed.SignedOffBy)
	assert.Equal(t, h.admin.ID, *signed.SignedOffBy)

	res = h.do(t, http.MethodGet, "/api/projects/"+h.project.ID+"/progress", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var progress types.ProjectProgress
	require.NoError(t, json.Unmarshal(res.body.Data, &progress))
	assert.Equal(t, 50, progress.Progress)

	res = h.do(t, http.MethodDelete, "/api/checklists/"+items[1].ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.status)
}

func TestFinalSignOffWithoutBody(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")

	item, err := h.audit.CreateChecklistItem(context.Background(), &types.NewChecklistItem{ProjectID: h.project.ID, Code: "30-1", Title: "Going concern"})
	require.NoError(t, err)

	// Streamed request with no bytes and no declared length.
	req := httptest.NewRequest(http.MethodPatch, "/api/checklists/"+item.ID+"/signoff", io.NopCloser(strings.NewReader("")))
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	var signed types.ChecklistItem
	require.NoError(t, json.Unmarshal(res.Data, &signed))
	assert.Equal(t, types.ChecklistStatusCompleted, signed.Status)
	require.NotNil(t, signed.SignedOffBy)
	assert.Equal(t, h.admin.ID, *signed.SignedOffBy)

	req = httptest.NewRequest(http.MethodPatch, "/api/checklists/"+item.ID+"/signoff", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")
	junior := h.login(t, "junior@example.com")

	payload := map[string]string{"email": "new@example.com", "password": "password123", "firstName": "New", "lastName": "Person"}

	res := h.do(t, http.MethodPost, "/api/auth/register", junior.AccessToken, payload)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = h.do(t, http.MethodPost, "/api/auth/register", admin.AccessToken, payload)
	require.Equal(t, http.StatusCreated, res.status)

	res = h.do(t, http.MethodPost, "/api/auth/register", admin.AccessToken, payload)
	assert.Equal(t, http.StatusConflict, res.status)
}

func TestRefreshAndMe(t *testing.T) {
	h := newHarness(t)
	tokens := h.login(t, "junior@example.com")

	res := h.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, res.status)
	var refreshed types.TokenPair
	require.NoError(t, json.Unmarshal(res.body.Data, &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	res = h.do(t, http.MethodGet, "/api/auth/me", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var me types.User
	require.NoError(t, json.Unmarshal(res.body.Data, &me))
	assert.Equal(t, h.junior.ID, me.ID)

	// A refresh token is not an access token.
	res = h.do(t, http.MethodGet, "/api/auth/me", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestDocumentUploadAndDownloadLink(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("projectId", h.project.ID))
	part, err := mw.CreateFormFile("file", "trial balance.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("account,debit,credit\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.server.URL+"/api/documents/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)

	res := h.send(t, req)
	require.Equal(t, http.StatusCreated, res.status)
	var doc types.Document
	require.NoError(t, json.Unmarshal(res.body.Data, &doc))
	assert.Equal(t, "trial balance.csv", doc.FileName)
	assert.Equal(t, h.admin.ID, doc.UploadedBy)

	res = h.do(t, http.MethodGet, "/api/documents/project/"+h.project.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var docs []*types.Document
	require.NoError(t, json.Unmarshal(res.body.Data, &docs))
	assert.Len(t, docs, 1)

	res = h.do(t, http.MethodGet, "/api/documents/"+doc.ID+"/link", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var link downloadLinkResponse
	require.NoError(t, json.Unmarshal(res.body.Data, &link))

	download, err := http.Get(h.server.URL + link.URL)
	require.NoError(t, err)
	defer download.Body.Close()
	require.Equal(t, http.StatusOK, download.StatusCode)
	content, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, "account,debit,credit\n", string(content))
	assert.Contains(t, download.Header.Get("Content-Disposition"), "attachment")

	res = h.do(t, http.MethodGet, "/api/documents/download?token=forged", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = h.do(t, http.MethodDelete, "/api/documents/"+doc.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.status)

	res = h.do(t, http.MethodGet, "/api/documents/"+doc.ID+"/link", admin.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestDashboardEndpoints(t *testing.T) {
	h := newHarness(t)
	junior := h.login(t, "junior@example.com")

	res := h.do(t, http.MethodGet, "/api/dashboard/summary", junior.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.status)
	var summary types.DashboardSummary
	require.NoError(t, json.Unmarshal(res.body.Data, &summary))
	assert.Equal(t, 1, summary.TotalProjects)
	assert.Equal(t, 1, summary.TotalClients)

	for _, path := range []string{"/api/dashboard/team-workload", "/api/dashboard/pending-tasks", "/api/dashboard/activity"} {
		res = h.do(t, http.MethodGet, path, junior.AccessToken, nil)
		assert.Equal(t, http.StatusOK, res.status, path)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newHarness(t)

	res := h.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.False(t, res.body.Success)

	res = h.do(t, http.MethodPut, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.status)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodOptions, h.server.URL+"/api/clients", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res := h.send(t, req)
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.Equal(t, "http://localhost:5173", res.header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	res = h.send(t, req)
	assert.Empty(t, res.header.Get("Access-Control-Allow-Origin"))
}
