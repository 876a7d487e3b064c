package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts only currentAccess and swaps it on refresh when
// refreshValid is set.
type fakeAPI struct {
	currentAccess string
	refreshValid  bool
	refreshStatus int
	refreshCalls  atomic.Int32
	dataCalls     atomic.Int32
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken":  f.currentAccess,
			"refreshToken": "refresh-1",
			"user":         map[string]string{"id": "u1", "email": "senior@example.com"},
		})
	})

	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshStatus != 0 {
			writeEnvelope(w, f.refreshStatus, nil)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !f.refreshValid || body["refreshToken"] != "refresh-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		f.currentAccess = "access-2"
		writeEnvelope(w, http.StatusOK, map[string]any{"accessToken": f.currentAccess})
	})

	mux.HandleFunc("GET /api/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		f.dataCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+f.currentAccess {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"totalProjects": 3})
	})

	mux.HandleFunc("GET /api/projects/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"message":"project not found"}`)
	})

	return mux
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 300, "data": data})
}

func newTestClient(t *testing.T, api *fakeAPI, session *Session) (*Client, *SessionFile) {
	t.Helper()

	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	store := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))
	if session != nil {
		require.NoError(t, store.Save(session))
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := New(logger, srv.URL, store)
	require.NoError(t, err)
	return client, store
}

func TestSessionFileRoundTrip(t *testing.T) {
	store := NewSessionFile(filepath.Join(t.TempDir(), "nested", "session.json"))

	empty, err := store.Load()
	require.NoError(t, err)
	assert.False(t, empty.Authenticated())

	require.NoError(t, store.Save(&Session{AccessToken: "a", RefreshToken: "r"}))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "r", loaded.RefreshToken)
	assert.True(t, loaded.Authenticated())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.Authenticated())
}

func TestLoginSavesSession(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1"}
	client, store := newTestClient(t, api, nil)

	user, err := client.Login(context.Background(), "senior@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-1", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)

	require.NoError(t, client.Logout())
	saved, err = store.Load()
	require.NoError(t, err)
	assert.False(t, saved.Authenticated())
}

func TestDoRefreshesOnceAndReplays(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1", refreshValid: true}
	client, store := newTestClient(t, api, &Session{AccessToken: "expired", RefreshToken: "refresh-1"})

	var summary types.DashboardSummary
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/api/dashboard/summary", nil, &summary))

	assert.Equal(t, 3, summary.TotalProjects)
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.dataCalls.Load())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access-2", saved.AccessToken)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
}

func TestDoFailedRefreshClearsSession(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1", refreshValid: false}
	client, store := newTestClient(t, api, &Session{AccessToken: "expired", RefreshToken: "refresh-1"})

	err := client.Do(context.Background(), http.MethodGet, "/api/dashboard/summary", nil, nil)
	require.ErrorIs(t, err, ErrReauthenticate)
	require.ErrorIs(t, err, types.ErrUnauthenticated)

	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 1, api.dataCalls.Load())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.False(t, saved.Authenticated())
	assert.False(t, client.Session().Authenticated())
}

func TestDoKeepsSessionWhenRefreshFailsOnServer(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1", refreshStatus: http.StatusInternalServerError}
	client, store := newTestClient(t, api, &Session{AccessToken: "expired", RefreshToken: "refresh-1"})

	err := client.Do(context.Background(), http.MethodGet, "/api/dashboard/summary", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReauthenticate)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.EqualValues(t, 1, api.refreshCalls.Load())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", saved.RefreshToken)
	assert.Equal(t, "refresh-1", client.Session().RefreshToken)
}

func TestDoWithoutSession(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1"}
	client, _ := newTestClient(t, api, nil)

	err := client.Do(context.Background(), http.MethodGet, "/api/dashboard/summary", nil, nil)
	require.ErrorIs(t, err, ErrReauthenticate)
	assert.EqualValues(t, 0, api.dataCalls.Load())
}

func TestDoMapsErrorStatus(t *testing.T) {
	api := &fakeAPI{currentAccess: "access-1"}
	client, _ := newTestClient(t, api, &Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	err := client.Do(context.Background(), http.MethodGet, "/api/projects/missing", nil, nil)
	require.ErrorIs(t, err, types.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "project not found", apiErr.Message)
	assert.EqualValues(t, 0, api.refreshCalls.Load())
}
