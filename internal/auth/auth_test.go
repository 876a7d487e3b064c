package auth

import (
	"context"
	"testing"
	"time"

	"auditdesk/pkg/types"

	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]*types.User

func (f fakeUsers) User(_ context.Context, userID string) (*types.User, error) {
	if u, ok := f[userID]; ok {
		return u, nil
	}
	return nil, types.ErrUserNotFound
}

func (f fakeUsers) UserByEmail(_ context.Context, email string) (*types.User, error) {
	for _, u := range f {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func newTestProvider(t *testing.T) (*Local, fakeUsers) {
	t.Helper()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	users := fakeUsers{
		"u1": {ID: "u1", Email: "senior@example.com", PasswordHash: hash, Role: types.RoleSeniorAuditor, IsActive: true},
		"u2": {ID: "u2", Email: "gone@example.com", PasswordHash: hash, Role: types.RoleJuniorAuditor, IsActive: false},
	}

	provider, err := NewLocal(users, "test-secret-test-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return provider, users
}

func TestAllowed(t *testing.T) {
	require.True(t, Allowed(types.RoleAdmin, ActionDeleteClient))
	require.False(t, Allowed(types.RolePartner, ActionDeleteClient))
	require.True(t, Allowed(types.RoleSeniorAuditor, ActionSetProjectStatus))
	require.False(t, Allowed(types.RoleJuniorAuditor, ActionSetProjectStatus))
	require.False(t, Allowed(types.RoleManager, ActionCreateProject))
	require.False(t, Allowed(types.RoleAdmin, Action("unknown")))
}

func TestLoginAndVerify(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	pair, user, err := provider.Login(ctx, " Senior@Example.com ", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, 900, pair.ExpiresIn)

	identity, err := provider.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, types.Identity{UserID: "u1", Email: "senior@example.com", Role: types.RoleSeniorAuditor}, *identity)
}

func TestLoginFailures(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	_, _, err := provider.Login(ctx, "senior@example.com", "wrong-password")
	require.ErrorIs(t, err, types.ErrUnauthenticated)

	_, _, err = provider.Login(ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, types.ErrUnauthenticated)

	_, _, err = provider.Login(ctx, "gone@example.com", "correct-horse")
	require.ErrorIs(t, err, types.ErrForbidden)
}

func TestRefreshTokenCannotAuthenticate(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	pair, _, err := provider.Login(ctx, "senior@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = provider.Verify(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, types.ErrUnauthenticated)

	_, err = provider.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestRefreshCarriesCurrentRole(t *testing.T) {
	provider, users := newTestProvider(t)
	ctx := context.Background()

	pair, _, err := provider.Login(ctx, "senior@example.com", "correct-horse")
	require.NoError(t, err)

	users["u1"].Role = types.RolePartner

	refreshed, err := provider.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Empty(t, refreshed.RefreshToken)

	identity, err := provider.Verify(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, types.RolePartner, identity.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	provider.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, _, err := provider.Login(ctx, "senior@example.com", "correct-horse")
	require.NoError(t, err)

	_, err = provider.Verify(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = provider.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	provider, _ := newTestProvider(t)
	other, err := NewLocal(fakeUsers{}, "another-secret-entirely", time.Minute, time.Hour)
	require.NoError(t, err)

	forged, err := other.issue(&types.User{ID: "u1", Email: "x@example.com", Role: types.RoleAdmin}, tokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = provider.Verify(context.Background(), forged)
	require.ErrorIs(t, err, types.ErrUnauthenticated)
}

func TestHashPasswordMinimumLength(t *testing.T) {
	_, err := HashPassword("short")
	require.Error(t, err)
}
