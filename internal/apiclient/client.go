package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

// ErrReauthenticate means the refresh token was rejected and the stored
// session has been cleared. The caller has to log in again.
var ErrReauthenticate = fmt.Errorf("session expired, log in again: %w", types.ErrUnauthenticated)

// APIError is a non-2xx response. It unwraps to the matching error kind in
// types so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return types.ErrValidation
	case http.StatusUnauthorized:
		return types.ErrUnauthenticated
	case http.StatusForbidden:
		return types.ErrForbidden
	case http.StatusNotFound:
		return types.ErrNotFound
	case http.StatusConflict:
		return types.ErrConflict
	}
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	logger  *logrus.Logger
	baseURL string
	http    *http.Client
	store   *SessionFile

	mu      sync.Mutex
	session *Session
}

func New(logger *logrus.Logger, baseURL string, store *SessionFile) (*Client, error) {
	session, err := store.Load()
	if err != nil {
		return nil, err
	}

	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		session: session,
	}, nil
}

func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *c.session
	return &cp
}

// Login exchanges credentials for a token pair and saves it.
func (c *Client) Login(ctx context.Context, email, password string) (*types.User, error) {
	var out struct {
		types.TokenPair
		User *types.User `json:"user"`
	}

	payload := map[string]string{"email": email, "password": password}
	if _, err := c.send(ctx, http.MethodPost, "/api/auth/login", payload, "", &out); err != nil {
		return nil, err
	}

	session := &Session{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, User: out.User}
	if err := c.store.Save(session); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	return out.User, nil
}

func (c *Client) Logout() error {
	c.mu.Lock()
	c.session = &Session{}
	c.mu.Unlock()
	return c.store.Clear()
}

// Do calls the API with the current access token and decodes data into out.
// A 401 triggers one refresh and one replay of the request.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	access := c.session.AccessToken
	c.mu.Unlock()

	if access == "" {
		return ErrReauthenticate
	}

	status, err := c.send(ctx, method, path, body, access, out)
	if status != http.StatusUnauthorized {
		return err
	}

	access, err = c.refresh(ctx, access)
	if err != nil {
		return err
	}

	_, err = c.send(ctx, method, path, body, access, out)
	return err
}

// refresh swaps the access token. stale is the token that was rejected; if
// another call already replaced it the newer token is reused.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.AccessToken != "" && c.session.AccessToken != stale {
		return c.session.AccessToken, nil
	}

	if c.session.RefreshToken == "" {
		return "", c.clearLocked()
	}

	var tokens types.TokenPair
	_, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": c.session.RefreshToken}, "", &tokens)
	if err != nil {
		if refreshRejected(err) {
			c.logger.WithError(err).Debug("token refresh rejected")
			return "", c.clearLocked()
		}
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}

	c.session.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		c.session.RefreshToken = tokens.RefreshToken
	}
	if err := c.store.Save(c.session); err != nil {
		return "", err
	}

	return c.session.AccessToken, nil
}

// refreshRejected reports whether the API turned the refresh token down, as
// opposed to failing for some other reason. Only a rejection ends the session.
func refreshRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

func (c *Client) clearLocked() error {
	c.session = &Session{}
	if err := c.store.Clear(); err != nil {
		return errors.Join(ErrReauthenticate, err)
	}
	return ErrReauthenticate
}

func (c *Client) send(ctx context.Context, method, path string, body any, token string, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return res.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, &APIError{Status: res.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return res.StatusCode, fmt.Errorf("failed to decode %s %s data: %w", method, path, err)
		}
	}

	return res.StatusCode, nil
}
