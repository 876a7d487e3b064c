package audit

import (
	"context"
	"fmt"
	"strings"

	"auditdesk/internal/auth"
	"auditdesk/internal/utils"
	"auditdesk/pkg/types"
)

type NewUser struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Role       types.Role `json:"role"`
	Department *string    `json:"department"`
}

func (s *Service) User(ctx context.Context, userID string) (*types.User, error) {
	return s.store.User(ctx, userID)
}

// RegisterUser creates an active user. Emails are stored lower-cased and must
// be unique.
func (s *Service) RegisterUser(ctx context.Context, in *NewUser) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateEmail(&email); err != nil || email == "" {
		return nil, validationError("a valid email is required")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, validationError("first and last name are required")
	}

	role := in.Role
	if role == "" {
		role = types.RoleJuniorAuditor
	}
	if !role.Valid() {
		return nil, validationError("invalid role %q", in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}

	now := s.now()
	user := &types.User{
		ID:           utils.NanoID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		Department:   trimmed(in.Department),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).WithField("role", user.Role).Info("user registered")
	return user, nil
}
