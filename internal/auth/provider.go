package auth

import (
	"context"
	"fmt"

	"auditdesk/pkg/types"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", types.ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token: %w", types.ErrUnauthenticated)
	ErrInactiveUser       = fmt.Errorf("account is deactivated: %w", types.ErrForbidden)
)

// Provider authenticates users and verifies the bearer tokens it hands out.
type Provider interface {
	Login(ctx context.Context, email, password string) (*types.TokenPair, *types.User, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error)
	Verify(ctx context.Context, accessToken string) (*types.Identity, error)
}

type UserLookup interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
}
