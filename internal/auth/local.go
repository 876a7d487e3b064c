package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auditdesk/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	issuer     = "auditdesk"
	claimEmail = "email"
	claimRole  = "role"
	claimType  = "typ"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Local issues HMAC signed tokens for users whose password hashes live in
// the database.
type Local struct {
	users      UserLookup
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewLocal(users UserLookup, secret string, accessTTL, refreshTTL time.Duration) (*Local, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 characters")
	}

	return &Local{
		users:      users,
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

func (l *Local) Login(ctx context.Context, email, password string) (*types.TokenPair, *types.User, error) {
	user, err := l.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrInactiveUser
	}

	access, err := l.issue(user, tokenTypeAccess, l.accessTTL)
	if err != nil {
		return nil, nil, err
	}

	refresh, err := l.issue(user, tokenTypeRefresh, l.refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	return &types.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(l.accessTTL.Seconds()),
	}, user, nil
}

// Refresh reloads the user so the new access token carries their current role.
func (l *Local) Refresh(ctx context.Context, refreshToken string) (*types.TokenPair, error) {
	token, err := l.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	userID, _ := token.Subject()
	user, err := l.users.User(ctx, userID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	access, err := l.issue(user, tokenTypeAccess, l.accessTTL)
	if err != nil {
		return nil, err
	}

	return &types.TokenPair{AccessToken: access, ExpiresIn: int(l.accessTTL.Seconds())}, nil
}

func (l *Local) Verify(_ context.Context, accessToken string) (*types.Identity, error) {
	token, err := l.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	userID, _ := token.Subject()

	var email, role string
	_ = token.Get(claimEmail, &email)
	if err := token.Get(claimRole, &role); err != nil {
		return nil, ErrInvalidToken
	}

	return &types.Identity{UserID: userID, Email: email, Role: types.Role(role)}, nil
}

func (l *Local) issue(user *types.User, tokenType string, ttl time.Duration) (string, error) {
	now := l.now()

	token, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(claimEmail, user.Email).
		Claim(claimRole, string(user.Role)).
		Claim(claimType, tokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build %s token: %w", tokenType, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), l.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return string(signed), nil
}

func (l *Local) parse(raw, tokenType string) (jwt.Token, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), l.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var typ string
	if err := token.Get(claimType, &typ); err != nil || typ != tokenType {
		return nil, ErrInvalidToken
	}

	if sub, ok := token.Subject(); !ok || sub == "" {
		return nil, ErrInvalidToken
	}

	return token, nil
}
