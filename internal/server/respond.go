package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxJSONBodyBytes = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Service) respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) ok(w http.ResponseWriter, status int, message string, data any) {
	s.respond(w, status, envelope{Success: true, Message: message, Data: data})
}

// fail maps err onto a status code. Anything that is not one of the error
// kinds in types is reported as a generic 500 and only logged in full.
func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})

	message := err.Error()
	if status == http.StatusInternalServerError {
		entry.Error("request failed")
		message = "internal server error"
	} else {
		entry.Debug("request rejected")
	}

	s.respond(w, status, envelope{Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var errEmptyBody = fmt.Errorf("%w: request body is empty", types.ErrValidation)

// decodeJSON reads a single JSON document into dst. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: malformed request body: %s", types.ErrValidation, err)
	}

	return nil
}

// decodeOptionalJSON is decodeJSON for bodies that may be absent. An empty
// body leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	if err := decodeJSON(w, r, dst); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	return nil
}
