package server

import (
	"fmt"
	"net/http"
	"strings"

	"auditdesk/internal/audit"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	*types.TokenPair
	User *types.User `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		s.fail(w, r, fmt.Errorf("%w: email and password are required", types.ErrValidation))
		return
	}

	tokens, user, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user logged in")

	s.ok(w, http.StatusOK, "Login successful", loginResponse{TokenPair: tokens, User: user})
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	if strings.TrimSpace(body.RefreshToken) == "" {
		s.fail(w, r, fmt.Errorf("%w: refresh token is required", types.ErrValidation))
		return
	}

	tokens, err := s.auth.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", tokens)
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body audit.NewUser
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.audit.RegisterUser(r.Context(), &body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusCreated, "User registered", user)
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFrom(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.audit.User(r.Context(), identity.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.ok(w, http.StatusOK, "", user)
}
